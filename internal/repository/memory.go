package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

// In-memory store implementations with the same contracts as the pgx ones.
// Tests wire services against these instead of a database.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, apierror.NotFound("User not found")
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *MemoryUserStore) FindByIDWithPassword(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, apierror.NotFound("User not found")
	}
	return u, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *MemoryUserStore) FindByEmailWithPassword(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return model.User{}, apierror.NotFound("User not found")
}

func (s *MemoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == needle {
			return apierror.Conflict("Email already exist")
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryUserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[u.ID]
	if !ok {
		return apierror.NotFound("User not found")
	}
	needle := strings.ToLower(u.Email)
	for id, existing := range s.users {
		if id != u.ID && strings.ToLower(existing.Email) == needle {
			return apierror.Conflict("Email already exist")
		}
	}
	u.PasswordHash = current.PasswordHash
	s.users[u.ID] = u
	return nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apierror.NotFound("User not found")
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apierror.NotFound("User not found")
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		u.PasswordHash = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

type MemoryCourseStore struct {
	mu      sync.RWMutex
	courses map[string]model.Course
}

func NewMemoryCourseStore() *MemoryCourseStore {
	return &MemoryCourseStore{courses: make(map[string]model.Course)}
}

func (s *MemoryCourseStore) FindByID(_ context.Context, id string) (model.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return model.Course{}, apierror.NotFound("Course not found")
	}
	return c, nil
}

func (s *MemoryCourseStore) Create(_ context.Context, c model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[c.ID] = c
	return nil
}

func (s *MemoryCourseStore) Update(_ context.Context, c model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[c.ID]; !ok {
		return apierror.NotFound("Course not found")
	}
	s.courses[c.ID] = c
	return nil
}

func (s *MemoryCourseStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return apierror.NotFound("Course not found")
	}
	delete(s.courses, id)
	return nil
}

func (s *MemoryCourseStore) List(_ context.Context) ([]model.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]model.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return courses, nil
}

func (s *MemoryCourseStore) IncrementPurchased(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return apierror.NotFound("Course not found")
	}
	c.Purchased++
	s.courses[id] = c
	return nil
}

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders []model.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{}
}

func (s *MemoryOrderStore) Create(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append(s.orders, o)
	return nil
}

func (s *MemoryOrderStore) List(_ context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]model.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{notifications: make(map[string]model.Notification)}
}

func (s *MemoryNotificationStore) Create(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryNotificationStore) FindByID(_ context.Context, id string) (model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return model.Notification{}, apierror.NotFound("Notification not found")
	}
	return n, nil
}

func (s *MemoryNotificationStore) UpdateStatus(_ context.Context, id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return apierror.NotFound("Notification not found")
	}
	n.Status = status
	s.notifications[id] = n
	return nil
}

func (s *MemoryNotificationStore) List(_ context.Context) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		notifications = append(notifications, n)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

type MemoryLayoutStore struct {
	mu      sync.RWMutex
	layouts map[string]model.Layout
}

func NewMemoryLayoutStore() *MemoryLayoutStore {
	return &MemoryLayoutStore{layouts: make(map[string]model.Layout)}
}

func (s *MemoryLayoutStore) FindByKind(_ context.Context, kind string) (model.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[kind]
	if !ok {
		return model.Layout{}, apierror.NotFound(fmt.Sprintf("%s not found", kind))
	}
	return l, nil
}

func (s *MemoryLayoutStore) Create(_ context.Context, l model.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layouts[l.Kind] = l
	return nil
}

func (s *MemoryLayoutStore) Update(_ context.Context, l model.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[l.Kind]; !ok {
		return apierror.NotFound(fmt.Sprintf("%s not found", l.Kind))
	}
	s.layouts[l.Kind] = l
	return nil
}
