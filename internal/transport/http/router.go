package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/samansohani78/private-poker/internal/config"
	"github.com/samansohani78/private-poker/internal/store"
	"github.com/samansohani78/private-poker/internal/table"
	"github.com/samansohani78/private-poker/internal/wallet"
)

// Deps carries everything the router serves. Store is nil when the server
// runs on the in-memory wallet; history endpoints answer 503 in that mode.
type Deps struct {
	Manager *table.Manager
	Wallet  wallet.Wallet
	Store   *store.Store
	Game    config.GameConfig
	WS      http.HandlerFunc

	AdminAPIKey string
}

func NewRouter(deps Deps) *chi.Mux {
	tables := NewTableHandlers(deps.Manager, deps.Store, deps.Game)
	wallets := NewWalletHandlers(deps.Wallet, deps.Store)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(deps.Store))
	if deps.WS != nil {
		r.Get("/ws", deps.WS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/tables", tables.List())
		r.Get("/tables/{table_id}", tables.View())
		r.Get("/tables/{table_id}/hands", tables.Hands())
		r.Get("/wallet/{user_id}", wallets.Balance())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(deps.AdminAPIKey))
			r.Post("/tables", tables.Create())
			r.Delete("/tables/{table_id}", tables.Close())
			r.Post("/topup", wallets.Topup())
		})
	})
	return r
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			_ = writeJSON(w, map[string]any{"ok": true, "db": "none"})
			return
		}
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = writeJSON(w, map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
