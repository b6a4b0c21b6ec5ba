package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hnordin/handla/internal/auth"
	"github.com/hnordin/handla/internal/lifecycle"
	"github.com/hnordin/handla/internal/model"
	"github.com/hnordin/handla/internal/store"
	ws "github.com/hnordin/handla/internal/websocket"
)

type ListHandler struct {
	listStore *store.ListStore
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewListHandler(ls *store.ListStore, hub *ws.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{listStore: ls, hub: hub, logger: logger}
}

type createListRequest struct {
	Name  string `json:"name"`
	Items []struct {
		ItemID int64 `json:"item_id"`
		Amount int   `json:"amount"`
	} `json:"items"`
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "list name is required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "list has to have at least one item")
		return
	}
	items := make([]store.NewListItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Amount < 1 {
			writeError(w, http.StatusBadRequest, "item amount must be at least 1")
			return
		}
		items = append(items, store.NewListItem{ItemID: item.ItemID, Amount: item.Amount})
	}

	list, err := h.listStore.Create(userID, req.Name, items)
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.hub.Broadcast(ws.NewMessage("list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

// List returns summaries of all the user's lists.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	lists, err := h.listStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list lists")
		return
	}
	if lists == nil {
		lists = []model.ListSummary{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.listStore.GetByID(id)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil || list.UserID != userID {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CurrentID resolves the user's current list id, null when there is none.
func (h *ListHandler) CurrentID(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := h.listStore.CurrentListID(userID)
	if err != nil {
		h.logger.Error("current list id", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get current list id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*int64{"id": id})
}

type toggleItemRequest struct {
	Checked bool `json:"checked"`
}

func (h *ListHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req toggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.listStore.ToggleItem(userID, id, req.Checked)
	if err != nil {
		h.logger.Error("toggle list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "list item not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("list_item", "toggled", item.ID, map[string]any{"checked": item.Checked}))
	writeJSON(w, http.StatusOK, item)
}

type renameListRequest struct {
	Name string `json:"name"`
}

func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req renameListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "list name is required")
		return
	}

	list, err := h.listStore.Rename(userID, id, req.Name)
	if err != nil {
		h.logger.Error("rename list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("list", "renamed", list.ID, nil))
	writeJSON(w, http.StatusOK, list)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus transitions the caller's current list to completed or
// cancelled.
func (h *ListHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	to := lifecycle.Status(req.Status)
	if !to.Valid() || to == lifecycle.StatusCurrent {
		writeError(w, http.StatusBadRequest, "status must be completed or cancelled")
		return
	}

	list, err := h.listStore.ChangeStatus(userID, to)
	switch {
	case errors.Is(err, store.ErrNoCurrentList):
		writeError(w, http.StatusConflict, "no current list")
		return
	case errors.Is(err, lifecycle.ErrTerminalState), errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("change list status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to change status")
		return
	}

	h.hub.Broadcast(ws.NewMessage("list", string(to), list.ID, nil))
	writeJSON(w, http.StatusOK, list)
}
