package handler

import (
	"net/http"
	"strconv"

	"labelquest/internal/api/middleware"
	"labelquest/internal/app/service"
	"labelquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService   *service.StatsService
	rankingService *service.RankingService
}

func NewStatsHandler(statsService *service.StatsService, rankingService *service.RankingService) *StatsHandler {
	return &StatsHandler{statsService: statsService, rankingService: rankingService}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ranking", h.ranking) // public leaderboard

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/stats/me", h.ownStats)
		authed.Get("/ranking/position", h.rankingPosition)
	})
}

func (h *StatsHandler) ownStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	stats, err := h.statsService.UpdateStats(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) ranking(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.rankingService.Ranking(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *StatsHandler) rankingPosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	position, err := h.rankingService.RankingPosition(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type PositionResponse struct {
		Position int `json:"position"` // zero-based, -1 when unranked
	}
	common.RespondWithJSON(w, http.StatusOK, PositionResponse{Position: position})
}
