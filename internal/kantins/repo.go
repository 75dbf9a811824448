package kantins

import (
	"context"

	"gorm.io/gorm"

	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
)

// Repository exposes kantin and menu persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a kantins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all kantins ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Kantin, error) {
	var kantins []models.Kantin
	if err := r.db.WithContext(ctx).Order("name asc").Find(&kantins).Error; err != nil {
		return nil, err
	}
	return kantins, nil
}

// FindByID loads one kantin with its menu items.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Kantin, error) {
	var kantin models.Kantin
	err := r.db.WithContext(ctx).
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("menu_items.name asc")
		}).
		First(&kantin, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &kantin, nil
}

// FindMenuItems loads the given menu items scoped to one kantin. Items from
// other kantins are silently excluded; callers compare lengths to detect it.
func (r *Repository) FindMenuItems(ctx context.Context, kantinID uint, itemIDs []uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("kantin_id = ? AND id IN ?", kantinID, itemIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
