package repositories

import (
	"context"
	"errors"

	"storefront/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateKey is returned when an insert collides with a unique
	// field (username or email), whatever the storage engine.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("record not found")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ProductRepository defines the interface for product data access.
// List returns products in insertion order.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context, skip, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines the interface for order data access.
// ListByUser returns the user's orders in insertion order.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]models.Order, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// newID returns a time ordered identifier, so sorting by id keeps
// insertion order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
