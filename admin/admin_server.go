// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/sea-bonus/health"
)

// Progress reads the global bonus counters.
type Progress interface {
	GetStatus(ctx context.Context, name string) (int64, error)
}

func logLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getLogLevelHandler(logLevel).ServeHTTP(w, r)
		case http.MethodPost:
			postLogLevelHandler(logLevel).ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// HTTPHandler serves the admin routes under /admin. The health and progress
// routes are only mounted when their source is given.
func HTTPHandler(logLevel *slog.LevelVar, h *health.Health, progress Progress) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()
	sub.HandleFunc("/loglevel", logLevelHandler(logLevel))
	if h != nil {
		sub.HandleFunc("/health", healthHandler(h)).Methods(http.MethodGet)
	}
	if progress != nil {
		sub.HandleFunc("/progress", progressHandler(progress)).Methods(http.MethodGet)
	}
	return handlers.CompressHandler(router)
}
