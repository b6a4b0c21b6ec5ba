package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hnordin/handla/internal/auth"
	"github.com/hnordin/handla/internal/model"
	"github.com/hnordin/handla/internal/store"
	ws "github.com/hnordin/handla/internal/websocket"
)

type CatalogHandler struct {
	catalogStore *store.CatalogStore
	hub          *ws.Hub
	logger       *slog.Logger
}

func NewCatalogHandler(cs *store.CatalogStore, hub *ws.Hub, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalogStore: cs, hub: hub, logger: logger}
}

// Get returns the user's catalog: every category with its items.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	categories, err := h.catalogStore.Categories(userID)
	if err != nil {
		h.logger.Error("list catalog", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	if categories == nil {
		categories = []model.CategoryWithItems{}
	}
	writeJSON(w, http.StatusOK, categories)
}

type catalogItemRequest struct {
	Name         string `json:"name"`
	Desc         string `json:"desc"`
	CategoryID   *int64 `json:"category_id"`
	CategoryName string `json:"category_name"`
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req catalogItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.CategoryID == nil && req.CategoryName == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	item, err := h.catalogStore.CreateItem(userID, req.CategoryID, req.CategoryName, req.Name, req.Desc)
	if err != nil {
		h.logger.Error("create catalog item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("catalog_item", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = h.catalogStore.DeleteItem(userID, id)
	if errors.Is(err, store.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.logger.Error("delete catalog item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("catalog_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
