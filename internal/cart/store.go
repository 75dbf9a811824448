package cart

import "context"

// Store is the record-level persistence surface a cart is saved to. Records
// are opaque strings keyed by RecordItems / RecordVendor; an absent record is
// reported via the boolean, not an error.
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StoreFactory yields a record store scoped to one user. Each user's cart
// persists into its own namespace, the way each browser profile has its own
// local storage.
type StoreFactory interface {
	ForUser(userID string) Store
}
