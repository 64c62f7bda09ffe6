package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/samansohani78/private-poker/internal/config"
	"github.com/samansohani78/private-poker/internal/store"
	"github.com/samansohani78/private-poker/internal/table"
)

type TableHandlers struct {
	manager  *table.Manager
	store    *store.Store
	defaults config.GameConfig
}

func NewTableHandlers(m *table.Manager, st *store.Store, defaults config.GameConfig) *TableHandlers {
	return &TableHandlers{manager: m, store: st, defaults: defaults}
}

// List snapshots every open table. The optional user_id query names the
// observer, so seated callers see their own hole cards.
func (h *TableHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		observer := r.URL.Query().Get("user_id")
		views := h.manager.List(r.Context(), observer)
		_ = writeJSON(w, map[string]any{"items": views})
	}
}

func (h *TableHandlers) View() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, ok := h.manager.Get(chi.URLParam(r, "table_id"))
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "table_not_found")
			return
		}
		view, err := handle.View(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			if errors.Is(err, table.ErrTableClosed) {
				WriteHTTPError(w, http.StatusNotFound, "table_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = writeJSON(w, view)
	}
}

// Hands returns persisted hand history, newest first. Requires the
// postgres store.
func (h *TableHandlers) Hands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "history_unavailable")
			return
		}
		tableID := chi.URLParam(r, "table_id")
		items, err := h.store.ListHandResults(r.Context(), tableID, ParseLimit(r))
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = writeJSON(w, map[string]any{"table_id": tableID, "items": items})
	}
}

// Create opens a new table. Omitted fields fall back to the server's
// configured game defaults.
func (h *TableHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SmallBlind      int64 `json:"small_blind"`
			BigBlind        int64 `json:"big_blind"`
			MinBuyIn        int64 `json:"min_buy_in"`
			MaxSeats        int   `json:"max_seats"`
			ActionTimeoutMS int64 `json:"action_timeout_ms"`
			AutoStart       int   `json:"auto_start"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
				return
			}
		}
		settings := h.defaults.Settings()
		if body.SmallBlind > 0 {
			settings.SmallBlind = body.SmallBlind
		}
		if body.BigBlind > 0 {
			settings.BigBlind = body.BigBlind
		}
		if body.MinBuyIn > 0 {
			settings.MinBuyIn = body.MinBuyIn
		}
		if body.MaxSeats > 0 {
			settings.MaxSeats = body.MaxSeats
		}
		if body.ActionTimeoutMS > 0 {
			settings.ActionTimeout = time.Duration(body.ActionTimeoutMS) * time.Millisecond
		}
		if body.AutoStart > 0 {
			settings.AutoStart = body.AutoStart
		}
		if settings.SmallBlind <= 0 || settings.BigBlind < settings.SmallBlind || settings.MinBuyIn < settings.BigBlind {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		handle := h.manager.Create(settings)
		_ = writeJSON(w, map[string]any{"ok": true, "table_id": handle.ID()})
	}
}

// Close shuts a table down, refunding every seat's escrow.
func (h *TableHandlers) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "table_id")
		if err := h.manager.Close(r.Context(), id); err != nil {
			if errors.Is(err, table.ErrTableNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "table_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = writeJSON(w, map[string]any{"ok": true, "table_id": id})
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
