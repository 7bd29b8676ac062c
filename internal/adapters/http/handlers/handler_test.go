package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quest-alumni/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "validation", err: domain.NewValidationError("amount is required"), wantStatus: http.StatusBadRequest, wantMsg: "amount is required"},
		{name: "transition", err: domain.ErrRepaymentAlreadyPaid, wantStatus: http.StatusBadRequest, wantMsg: "repayment is already paid"},
		{name: "unauthorized", err: domain.ErrTokenRevoked, wantStatus: http.StatusUnauthorized, wantMsg: "token revoked"},
		{name: "forbidden", err: domain.NewForbiddenError("not yours"), wantStatus: http.StatusForbidden, wantMsg: "not yours"},
		{name: "not found", err: domain.ErrLoanNotFound, wantStatus: http.StatusNotFound},
		{name: "wrapped domain error", err: fmt.Errorf("claim: %w", domain.ErrLoanNotFound), wantStatus: http.StatusNotFound},
		{name: "unexpected", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var out struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &out))
			assert.False(t, out.Success)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, out.Error)
			}
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		cache      Pinger
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "healthy without cache",
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy", "cache": "disabled"},
		},
		{
			name:       "cache down",
			cache:      stubPinger{err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy", "cache": "unhealthy"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("ping failed"),
			cache:      stubPinger{},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"database": "unhealthy", "cache": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{dbCheck: func() error { return tt.dbErr }, cache: tt.cache}
			app := fiber.New()
			app.Get("/health", h.HealthCheck)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var out struct {
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			for k, v := range tt.wantChecks {
				assert.Equal(t, v, out.Checks[k], k)
			}
		})
	}
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return c.SendStatus(http.StatusBadRequest)
		}
		return c.SendString(fmt.Sprint(id))
	})

	for path, want := range map[string]int{"/items/7": http.StatusOK, "/items/0": http.StatusBadRequest, "/items/x": http.StatusBadRequest, "/items/-1": http.StatusBadRequest} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
