// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vechain/sea-bonus/health"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/nodedb"
)

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type progressResponse struct {
	Layer     int64 `json:"layer"`
	BonusTime int64 `json:"bonusTime"`
}

type errorResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func writeError(w http.ResponseWriter, errCode int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errCode)
	json.NewEncoder(w).Encode(errorResponse{
		ErrorCode:    errCode,
		ErrorMessage: errMsg,
	})
}

func getLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := logLevelResponse{
			CurrentLevel: logLevel.Level().String(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to encode response")
		}
	}
}

func postLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		level, ok := log.ParseLevel(req.Level)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid verbosity level")
			return
		}
		logLevel.Set(level)

		w.Header().Set("Content-Type", "application/json")
		response := logLevelResponse{
			CurrentLevel: logLevel.Level().String(),
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

func healthHandler(h *health.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.Status()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}

// progressHandler reports the layer to process next and the current bonus
// time. Layer 0 means the next tick starts from the deepest layer.
func progressHandler(p Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layer, err := p.GetStatus(r.Context(), nodedb.StatusNodeBonus)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		bonusTime, err := p.GetStatus(r.Context(), nodedb.StatusNodeBonusTimepoint)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if layer == nodedb.Absent || bonusTime == nodedb.Absent {
			writeError(w, http.StatusServiceUnavailable, "bonus status not prepared")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(progressResponse{Layer: layer, BonusTime: bonusTime})
	}
}
