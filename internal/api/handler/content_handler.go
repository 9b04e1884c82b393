package handler

import (
	"encoding/json"
	"net/http"

	"labelquest/internal/api/middleware"
	"labelquest/internal/app/service"
	"labelquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContentHandler struct {
	contentService *service.ContentService
}

func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/images/{imageID}", h.getImage)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/images", h.uploadImage)
	})
}

func (h *ContentHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.contentService.ListCategories(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *ContentHandler) getImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	image, err := h.contentService.GetImage(r.Context(), imageID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, image)
}

func (h *ContentHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	image, err := h.contentService.UploadImage(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, image)
}
