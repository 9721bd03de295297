package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type LayoutHandler struct {
	layouts *service.LayoutService
}

func NewLayoutHandler(layouts *service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layouts: layouts}
}

func (h *LayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LayoutRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	layout, err := h.layouts.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.LayoutResponse{Success: true, Layout: layout})
}

func (h *LayoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LayoutRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	layout, err := h.layouts.Update(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LayoutResponse{Success: true, Layout: layout})
}

func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "type")
	if kind == "" {
		writeError(w, apierror.BadRequest("Layout type is required"))
		return
	}

	layout, err := h.layouts.Get(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LayoutResponse{Success: true, Layout: layout})
}
