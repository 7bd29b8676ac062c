package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s *stubResolver) ResolveActor(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return user, nil
}

func newProtectedApp(resolver ActorResolver, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthMiddleware(resolver)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		actor, _ := GetActor(c)
		return c.JSON(fiber.Map{"userId": actor.UserID, "role": actor.Role})
	})
	app.Get("/protected", handlers...)
	return app
}

func decode(t *testing.T, resp *http.Response) response.Response {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out response.Response
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"member-token": {ID: 4, Role: domain.RoleAlumniMember, UserType: domain.UserTypeAlumni},
		"admin-token":  {ID: 1, Role: domain.RoleAdmin, UserType: domain.UserTypeStaff},
	}}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token member-token", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "bearer header", header: "Bearer member-token", wantStatus: http.StatusOK},
		{name: "cookie", cookie: "admin-token", wantStatus: http.StatusOK},
	}

	app := newProtectedApp(resolver)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_DisabledAccount(t *testing.T) {
	app := newProtectedApp(&stubResolver{err: domain.ErrAccountDisabled})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer any")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "your account has been disabled", decode(t, resp).Error)
}

func TestAuthMiddleware_ResolverFailure(t *testing.T) {
	app := newProtectedApp(&stubResolver{err: errors.New("database is down")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer any")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRoleMiddleware(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"member":  {ID: 4, Role: domain.RoleAlumniMember},
		"manager": {ID: 2, Role: domain.RoleLoanManager},
		"admin":   {ID: 1, Role: domain.RoleAdmin},
	}}

	tests := []struct {
		name       string
		guard      fiber.Handler
		token      string
		wantStatus int
	}{
		{name: "admin only rejects member", guard: AdminOnly(), token: "member", wantStatus: http.StatusForbidden},
		{name: "admin only rejects manager", guard: AdminOnly(), token: "manager", wantStatus: http.StatusForbidden},
		{name: "admin only allows admin", guard: AdminOnly(), token: "admin", wantStatus: http.StatusOK},
		{name: "manager or admin rejects member", guard: LoanManagerOrAdmin(), token: "member", wantStatus: http.StatusForbidden},
		{name: "manager or admin allows manager", guard: LoanManagerOrAdmin(), token: "manager", wantStatus: http.StatusOK},
		{name: "manager or admin allows admin", guard: LoanManagerOrAdmin(), token: "admin", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(resolver, tt.guard)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRoleMiddleware_WithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminOnly(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/public", PublicCache(0), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", PublicCache(0), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNotFound) })
	app.Get("/auth", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, "public, max-age=0", resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/auth", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get(fiber.HeaderCacheControl))
}
