// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/sea-bonus/log"
)

// mockLogger keeps the context of every info record.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) New(_ ...any) log.Logger { return m }

func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Handler() slog.Handler { return nil }

func TestRequestLoggerHandler(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(strings.Builder)
		if r.Body != nil {
			buf := make([]byte, 64)
			n, _ := r.Body.Read(buf)
			body.Write(buf[:n])
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK:" + body.String()))
	})

	tests := []struct {
		name    string
		enabled *atomic.Bool
		logged  bool
	}{
		{"nil switch", nil, false},
		{"disabled", new(atomic.Bool), false},
		{"enabled", func() *atomic.Bool { b := new(atomic.Bool); b.Store(true); return b }(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLog := &mockLogger{}
			handler := RequestLoggerHandler(testHandler, mockLog, tt.enabled)

			req := httptest.NewRequest("POST", "http://example.com/admin/loglevel", strings.NewReader(`{"level":"debug"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			// the wrapped handler still sees the body
			assert.Equal(t, `OK:{"level":"debug"}`, rr.Body.String())

			if !tt.logged {
				assert.Empty(t, mockLog.loggedData)
				return
			}
			assert.Contains(t, mockLog.loggedData, "URI")
			assert.Contains(t, mockLog.loggedData, "http://example.com/admin/loglevel")
			assert.Contains(t, mockLog.loggedData, "Method")
			assert.Contains(t, mockLog.loggedData, "POST")
			assert.Contains(t, mockLog.loggedData, "Body")
			assert.Contains(t, mockLog.loggedData, `{"level":"debug"}`)

			foundTimestamp := false
			for i := 0; i < len(mockLog.loggedData); i += 2 {
				if mockLog.loggedData[i] == "timestamp" {
					_, ok := mockLog.loggedData[i+1].(int64)
					assert.True(t, ok, "timestamp should be an int64")
					foundTimestamp = true
					break
				}
			}
			assert.True(t, foundTimestamp, "timestamp should be logged")
		})
	}
}
