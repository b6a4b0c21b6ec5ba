package handler

import (
	"log/slog"
	"net/http"

	"github.com/hnordin/handla/internal/auth"
	"github.com/hnordin/handla/internal/model"
	"github.com/hnordin/handla/internal/store"
)

type StatsHandler struct {
	statsStore *store.StatsStore
	logger     *slog.Logger
}

func NewStatsHandler(ss *store.StatsStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{statsStore: ss, logger: logger}
}

func (h *StatsHandler) TopItems(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	ranks, err := h.statsStore.TopItems(userID)
	if err != nil {
		h.logger.Error("top items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	if ranks == nil {
		ranks = []model.UsageRank{}
	}
	writeJSON(w, http.StatusOK, ranks)
}

func (h *StatsHandler) TopCategories(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	ranks, err := h.statsStore.TopCategories(userID)
	if err != nil {
		h.logger.Error("top categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	if ranks == nil {
		ranks = []model.UsageRank{}
	}
	writeJSON(w, http.StatusOK, ranks)
}

func (h *StatsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	points, err := h.statsStore.MonthlyTimeline(userID)
	if err != nil {
		h.logger.Error("monthly timeline", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	if points == nil {
		points = []model.MonthlyUsage{}
	}
	writeJSON(w, http.StatusOK, points)
}
