package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

type OrderService struct {
	orders        OrderStore
	courses       CourseStore
	users         *UserService
	notifications NotificationStore
	mailer        Mailer
}

func NewOrderService(orders OrderStore, courses CourseStore, users *UserService, notifications NotificationStore, mailer Mailer) *OrderService {
	return &OrderService{
		orders:        orders,
		courses:       courses,
		users:         users,
		notifications: notifications,
		mailer:        mailer,
	}
}

// Create records a purchase: order row, enrollment, admin notification,
// purchase counter, confirmation mail. Payment itself happened upstream;
// payment_info is stored opaquely.
func (s *OrderService) Create(ctx context.Context, user model.User, req model.CreateOrderRequest) (model.Order, error) {
	if user.Enrolled(req.CourseID) {
		return model.Order{}, apierror.BadRequest("You have already purchased this course")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Order{}, apierror.NotFound("Course not found")
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:          uuid.NewString(),
		CourseID:    course.ID,
		UserID:      user.ID,
		PaymentInfo: req.PaymentInfo,
		CreatedAt:   now,
	}

	mailData := map[string]any{
		"OrderID":    shortID(order.ID),
		"CourseName": course.Name,
		"Price":      course.Price,
		"Date":       now.Format("January 2, 2006"),
	}
	if err := s.mailer.Send(ctx, user.Email, "Order Confirmation", "order-confirmation", mailData); err != nil {
		return model.Order{}, apierror.Dependency("could not send order confirmation", err)
	}

	if _, err := s.users.EnrollUser(ctx, user.ID, course.ID); err != nil {
		return model.Order{}, err
	}

	if err := s.notifications.Create(ctx, model.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     "New Order",
		Message:   fmt.Sprintf("You have a new order from %s", course.Name),
		Status:    model.NotificationUnread,
		CreatedAt: now,
	}); err != nil {
		return model.Order{}, err
	}

	if err := s.courses.IncrementPurchased(ctx, course.ID); err != nil {
		return model.Order{}, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return model.Order{}, err
	}

	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[:6]
}
