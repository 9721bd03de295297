package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-backend/internal/config"
	"lms-backend/internal/handler"
	"lms-backend/internal/middleware"
	"lms-backend/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	userHandler *handler.UserHandler,
	courseHandler *handler.CourseHandler,
	orderHandler *handler.OrderHandler,
	notificationHandler *handler.NotificationHandler,
	layoutHandler *handler.LayoutHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	requireAuth := authMiddleware.RequireAuth
	requireUser := authMiddleware.RequireUser
	adminOnly := authMiddleware.RequireRoles("admin")

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(model.MessageResponse{
				Success: true,
				Message: "Api is working",
			})
		})

		// Auth and account routes.
		api.Post("/registration", userHandler.Register)
		api.Post("/activate-user", userHandler.Activate)
		api.Post("/login", userHandler.Login)
		api.Post("/social-auth", userHandler.SocialAuth)
		api.Get("/refresh", userHandler.Refresh)
		api.With(requireAuth).Get("/logout", userHandler.Logout)
		api.With(requireAuth, requireUser).Get("/me", userHandler.Me)
		api.With(requireAuth, requireUser).Put("/update-user-data", userHandler.UpdateUserData)
		api.With(requireAuth, requireUser).Put("/update-password", userHandler.UpdatePassword)
		api.With(requireAuth, requireUser).Put("/update-user-avatar", userHandler.UpdateAvatar)
		api.With(requireAuth, requireUser, adminOnly).Get("/get-all-users", userHandler.AllUsers)
		api.With(requireAuth, requireUser, adminOnly).Put("/update-user-role", userHandler.UpdateRole)
		api.With(requireAuth, requireUser, adminOnly).Delete("/delete-user/{id}", userHandler.DeleteUser)

		// Course routes. Public reads are unauthenticated.
		api.Get("/get-course/{id}", courseHandler.GetSingle)
		api.Get("/get-courses", courseHandler.GetAllPublic)
		api.With(requireAuth, requireUser).Get("/get-course-content/{id}", courseHandler.GetContent)
		api.With(requireAuth, requireUser).Put("/add-question", courseHandler.AddQuestion)
		api.With(requireAuth, requireUser).Put("/add-answer", courseHandler.AddAnswer)
		api.With(requireAuth, requireUser).Put("/add-review/{id}", courseHandler.AddReview)
		api.With(requireAuth, requireUser, adminOnly).Put("/add-reply", courseHandler.AddReply)
		api.With(requireAuth, requireUser, adminOnly).Post("/create-course", courseHandler.Create)
		api.With(requireAuth, requireUser, adminOnly).Put("/edit-course/{id}", courseHandler.Edit)
		api.With(requireAuth, requireUser, adminOnly).Get("/get-all-courses", courseHandler.GetAllAdmin)
		api.With(requireAuth, requireUser, adminOnly).Delete("/delete-course/{id}", courseHandler.Delete)

		// Orders.
		api.With(requireAuth, requireUser).Post("/create-order", orderHandler.Create)
		api.With(requireAuth, requireUser, adminOnly).Get("/get-all-orders", orderHandler.GetAll)

		// Notifications are admin-facing.
		api.With(requireAuth, requireUser, adminOnly).Get("/get-all-notifications", notificationHandler.GetAll)
		api.With(requireAuth, requireUser, adminOnly).Put("/update-notification-status/{id}", notificationHandler.MarkRead)

		// Layouts. Reads require a session but no particular role.
		api.With(requireAuth, requireUser).Get("/get-layout/{type}", layoutHandler.Get)
		api.With(requireAuth, requireUser, adminOnly).Post("/create-layout", layoutHandler.Create)
		api.With(requireAuth, requireUser, adminOnly).Put("/update-layout", layoutHandler.Update)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("Route %s not found", req.URL.Path),
		})
	})

	return r
}
