package models

import "time"

// Kantin represents one food stall (warung) on campus. Integer ids are part
// of the public API contract, so the model keeps autoincrement keys rather
// than UUIDs.
type Kantin struct {
	ID          uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string     `gorm:"column:name;not null"`
	Description string     `gorm:"column:description;not null;default:''"`
	Location    string     `gorm:"column:location;not null;default:''"`
	ImageURL    *string    `gorm:"column:image_url"`
	IsOpen      bool       `gorm:"column:is_open;not null;default:true"`
	MenuItems   []MenuItem `gorm:"foreignKey:KantinID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
