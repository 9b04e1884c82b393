package handler

import (
	"encoding/json"
	"net/http"

	"labelquest/internal/api/middleware"
	"labelquest/internal/app/service"
	"labelquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type GameHandler struct {
	gameService *service.GameService
}

func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	// Sampling is open to anonymous players; they only ever see validated
	// content. Answering requires an account.
	r.Get("/images/next", h.nextImage)
	r.Get("/tags/next", h.nextTag)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/images/{imageID}/answer", h.answerImage)
		authed.Post("/tags/{tagID}/answer", h.answerTag)
	})
}

func sampleOptions(r *http.Request) service.SampleOptions {
	return service.SampleOptions{OnlyOwnImages: r.URL.Query().Get("own") == "true"}
}

func (h *GameHandler) nextImage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.OptionalUserID(r.Context())

	image, err := h.gameService.NextImage(r.Context(), userID, sampleOptions(r))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// nil means "nothing left to answer" and is not an error
	common.RespondWithJSON(w, http.StatusOK, service.ImageAnswerResponse{Next: image})
}

func (h *GameHandler) nextTag(w http.ResponseWriter, r *http.Request) {
	userID := middleware.OptionalUserID(r.Context())

	tag, err := h.gameService.NextTag(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, service.TagAnswerResponse{Next: tag})
}

func (h *GameHandler) answerImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	imageID := chi.URLParam(r, "imageID")

	var req service.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.gameService.AnswerImage(r.Context(), userID, imageID, req, sampleOptions(r))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) answerTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	tagID := chi.URLParam(r, "tagID")

	var req service.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.gameService.AnswerTag(r.Context(), userID, tagID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
