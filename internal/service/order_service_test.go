package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"lms-backend/internal/cache"
	"lms-backend/internal/model"
	"lms-backend/internal/repository"
)

type orderFixture struct {
	service       *OrderService
	users         *UserService
	courses       *repository.MemoryCourseStore
	orders        *repository.MemoryOrderStore
	notifications *repository.MemoryNotificationStore
	mailer        *fakeMailer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	sessionCache, err := cache.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessionCache.Close() })

	tokens := testTokenService()
	userStore := repository.NewMemoryUserStore()
	courses := repository.NewMemoryCourseStore()
	orders := repository.NewMemoryOrderStore()
	notifications := repository.NewMemoryNotificationStore()
	mailer := &fakeMailer{}
	objects := newFakeObjectStore()

	users := NewUserService(tokens, userStore, sessionCache, mailer, objects, 168*time.Hour)

	return &orderFixture{
		service:       NewOrderService(orders, courses, users, notifications, mailer),
		users:         users,
		courses:       courses,
		orders:        orders,
		notifications: notifications,
		mailer:        mailer,
	}
}

func (f *orderFixture) seedUserAndCourse(t *testing.T) (model.User, model.Course) {
	t.Helper()
	ctx := context.Background()

	user, _, _, err := f.users.SocialAuth(ctx, model.SocialAuthRequest{
		Name: "Ada", Email: "ada@example.com",
	})
	require.NoError(t, err)

	course := model.Course{
		ID:        "course-1",
		Name:      "Go from scratch",
		Price:     49,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.courses.Create(ctx, course))

	return user, course
}

func TestOrderCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("records everything a purchase entails", func(t *testing.T) {
		f := newOrderFixture(t)
		user, course := f.seedUserAndCourse(t)

		order, err := f.service.Create(ctx, user, model.CreateOrderRequest{
			CourseID:    course.ID,
			PaymentInfo: map[string]any{"provider": "stripe", "intent": "pi_123"},
		})
		require.NoError(t, err)
		require.Equal(t, course.ID, order.CourseID)
		require.Equal(t, user.ID, order.UserID)

		// Enrollment.
		enrolled, err := f.users.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, enrolled.Enrolled(course.ID))

		// Confirmation mail.
		mail := f.mailer.lastSent()
		require.Equal(t, "order-confirmation", mail.Template)
		require.Equal(t, user.Email, mail.To)
		data := mail.Data.(map[string]any)
		require.Equal(t, order.ID[:6], data["OrderID"])
		require.Equal(t, course.Name, data["CourseName"])

		// Admin notification.
		notifications, err := f.notifications.List(ctx)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		require.Equal(t, "New Order", notifications[0].Title)
		require.Equal(t, model.NotificationUnread, notifications[0].Status)

		// Purchase counter.
		stored, err := f.courses.FindByID(ctx, course.ID)
		require.NoError(t, err)
		require.Equal(t, 1, stored.Purchased)

		// Order row.
		orders, err := f.service.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		require.Equal(t, "stripe", orders[0].PaymentInfo["provider"])
	})

	t.Run("rejects a repeat purchase", func(t *testing.T) {
		f := newOrderFixture(t)
		user, course := f.seedUserAndCourse(t)

		_, err := f.service.Create(ctx, user, model.CreateOrderRequest{CourseID: course.ID})
		require.NoError(t, err)

		repeat, err := f.users.CurrentUser(ctx, user.ID)
		require.NoError(t, err)

		_, err = f.service.Create(ctx, repeat, model.CreateOrderRequest{CourseID: course.ID})
		requireAPIError(t, err, http.StatusBadRequest, "You have already purchased this course")
	})

	t.Run("rejects an unknown course", func(t *testing.T) {
		f := newOrderFixture(t)
		user, _ := f.seedUserAndCourse(t)

		_, err := f.service.Create(ctx, user, model.CreateOrderRequest{CourseID: "missing"})
		requireAPIError(t, err, http.StatusNotFound, "Course not found")
	})

	t.Run("mail failure aborts before any writes", func(t *testing.T) {
		f := newOrderFixture(t)
		user, course := f.seedUserAndCourse(t)
		f.mailer.fail = true

		_, err := f.service.Create(ctx, user, model.CreateOrderRequest{CourseID: course.ID})
		require.Error(t, err)

		orders, listErr := f.service.ListAll(ctx)
		require.NoError(t, listErr)
		require.Empty(t, orders)

		stored, findErr := f.courses.FindByID(ctx, course.ID)
		require.NoError(t, findErr)
		require.Zero(t, stored.Purchased)
	})
}

func TestNotificationMarkRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newOrderFixture(t)
	user, course := f.seedUserAndCourse(t)

	_, err := f.service.Create(ctx, user, model.CreateOrderRequest{CourseID: course.ID})
	require.NoError(t, err)

	notificationService := NewNotificationService(f.notifications)
	list, err := notificationService.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	refreshed, err := notificationService.MarkRead(ctx, list[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.NotificationRead, refreshed[0].Status)

	// Marking twice is harmless.
	refreshed, err = notificationService.MarkRead(ctx, list[0].ID)
	require.NoError(t, err)
	require.Equal(t, model.NotificationRead, refreshed[0].Status)

	_, err = notificationService.MarkRead(ctx, "missing")
	requireAPIError(t, err, http.StatusNotFound, "Notification not found")
}
