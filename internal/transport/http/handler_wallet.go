package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samansohani78/private-poker/internal/store"
	"github.com/samansohani78/private-poker/internal/wallet"
)

type WalletHandlers struct {
	wallet wallet.Wallet
	store  *store.Store
}

func NewWalletHandlers(w wallet.Wallet, st *store.Store) *WalletHandlers {
	return &WalletHandlers{wallet: w, store: st}
}

func (h *WalletHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		bal, err := h.wallet.Balance(r.Context(), userID)
		if err != nil {
			if errors.Is(err, wallet.ErrNoAccount) {
				WriteHTTPError(w, http.StatusNotFound, "account_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = writeJSON(w, map[string]any{"user_id": userID, "balance": bal})
	}
}

// Topup credits a user account. Backed by a ledger row in postgres mode,
// by a direct deposit on the in-memory wallet otherwise.
func (h *WalletHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.UserID == "" || body.Amount <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if h.store != nil {
			if err := h.store.EnsureAccount(r.Context(), body.UserID, 0); err != nil {
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
				return
			}
			refID := store.NewID()
			bal, err := h.store.Credit(r.Context(), body.UserID, body.Amount, "topup_credit", "topup", refID, "topup:"+refID)
			if err != nil {
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
				return
			}
			_ = writeJSON(w, map[string]any{"ok": true, "balance": bal})
			return
		}
		mem, ok := h.wallet.(*wallet.Memory)
		if !ok {
			WriteHTTPError(w, http.StatusServiceUnavailable, "topup_unavailable")
			return
		}
		mem.Deposit(body.UserID, body.Amount)
		bal, _ := mem.Balance(r.Context(), body.UserID)
		_ = writeJSON(w, map[string]any{"ok": true, "balance": bal})
	}
}
