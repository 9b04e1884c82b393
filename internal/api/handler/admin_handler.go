package handler

import (
	"encoding/json"
	"net/http"

	"labelquest/internal/api/middleware"
	"labelquest/internal/app/service"
	"labelquest/internal/common"
	"labelquest/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService   *service.AdminService
	contentService *service.ContentService
	statsService   *service.StatsService
	exportService  *service.ExportService
}

func NewAdminHandler(
	adminService *service.AdminService,
	contentService *service.ContentService,
	statsService *service.StatsService,
	exportService *service.ExportService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		contentService: contentService,
		statsService:   statsService,
		exportService:  exportService,
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)

	r.Get("/images/pending", h.listPendingImages)
	r.Patch("/images/{imageID}/validated", h.setImageValidated)
	r.Patch("/images/{imageID}/active", h.setImageActive)
	r.Patch("/users/{userID}/locked", h.setUserLocked)
	r.Patch("/users/{userID}/admin", h.setUserAdmin)
	r.Get("/users/{userID}/stats", h.userStats)
	r.Post("/categories", h.createCategory)
	r.Post("/tags", h.createTag)
	r.Get("/export/answers.csv", h.exportAnswers)
	r.Get("/export/users.csv", h.exportUsers)
}

type flagRequest struct {
	Value bool `json:"value"`
}

func decodeFlag(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false, false
	}
	return req.Value, true
}

func (h *AdminHandler) listPendingImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.adminService.ListPendingImages(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, images)
}

func (h *AdminHandler) setImageValidated(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if err := h.adminService.SetImageValidated(r.Context(), chi.URLParam(r, "imageID"), value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) setImageActive(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if err := h.adminService.SetImageActive(r.Context(), chi.URLParam(r, "imageID"), value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) setUserLocked(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if err := h.adminService.SetUserLocked(r.Context(), chi.URLParam(r, "userID"), value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) setUserAdmin(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeFlag(w, r)
	if !ok {
		return
	}
	if err := h.adminService.SetUserAdmin(r.Context(), chi.URLParam(r, "userID"), value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) userStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.UpdateStats(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	category, err := h.contentService.CreateCategory(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *AdminHandler) createTag(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	tag, err := h.contentService.CreateTag(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, tag)
}

func (h *AdminHandler) exportAnswers(w http.ResponseWriter, r *http.Request) {
	kind := model.GameImages
	if r.URL.Query().Get("game") == string(model.GameTags) {
		kind = model.GameTags
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="answers.csv"`)
	if err := h.exportService.ExportAnswers(r.Context(), kind, w); err != nil {
		// Headers are out the door; all we can do is log via the error path.
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
	}
}

func (h *AdminHandler) exportUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	if err := h.exportService.ExportUsers(r.Context(), w); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
	}
}
