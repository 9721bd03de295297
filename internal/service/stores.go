package service

import (
	"context"
	"time"

	"lms-backend/internal/model"
)

// Store interfaces are defined on the consumer side; pgx implementations
// live in internal/repository, in-memory ones back the tests.

type UserStore interface {
	// FindByID and FindByEmail return the record without the password
	// hash; the *WithPassword variants are the only reads that include it.
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByIDWithPassword(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user model.User) error
	Update(ctx context.Context, user model.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (model.Course, error)
	Create(ctx context.Context, course model.Course) error
	Update(ctx context.Context, course model.Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Course, error)
	IncrementPurchased(ctx context.Context, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, order model.Order) error
	List(ctx context.Context) ([]model.Order, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification model.Notification) error
	FindByID(ctx context.Context, id string) (model.Notification, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	List(ctx context.Context) ([]model.Notification, error)
}

type LayoutStore interface {
	FindByKind(ctx context.Context, kind string) (model.Layout, error)
	Create(ctx context.Context, layout model.Layout) error
	Update(ctx context.Context, layout model.Layout) error
}

// SessionCache is the shared key-value store bridging stateless tokens to
// user data. Get reports absence without an error.
type SessionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Mailer delivers templated mail out-of-band.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, template string, data any) error
}

// ObjectStore holds uploaded binary assets (avatars, thumbnails, banners).
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
