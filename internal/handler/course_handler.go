package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-backend/internal/middleware"
	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type CourseHandler struct {
	courses *service.CourseService
}

func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CoursePayload
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) Edit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Course id is required"))
		return
	}

	var payload model.EditCoursePayload
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.Edit(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

// GetSingle serves the public view: no video URLs, no questions, no auth.
func (h *CourseHandler) GetSingle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Course id is required"))
		return
	}

	course, err := h.courses.GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) GetAllPublic(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListPublic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CoursesResponse{Success: true, Courses: courses})
}

func (h *CourseHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Course id is required"))
		return
	}

	content, err := h.courses.ContentFor(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseContentResponse{Success: true, Content: content})
}

func (h *CourseHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.AddQuestionRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.AddQuestion(r.Context(), user, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) AddAnswer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.AddAnswerRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.AddAnswer(r.Context(), user, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Course id is required"))
		return
	}

	var payload model.AddReviewRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.AddReview(r.Context(), user, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.AddReviewReplyRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.AddReply(r.Context(), user, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CourseResponse{Success: true, Course: course})
}

func (h *CourseHandler) GetAllAdmin(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CoursesResponse{Success: true, Courses: courses})
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Course id is required"))
		return
	}

	if err := h.courses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Success: true,
		Message: "Course deleted successfully",
	})
}
