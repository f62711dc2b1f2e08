package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

type stubUsers struct {
	repository.UserRepository
	users map[string]*domain.User
}

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestApp(m *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	handlers := append([]fiber.Handler{}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity := OptionalIdentity(c)
		if identity == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(identity.SubjectID)
	})
	app.Get("/", handlers...)
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	return string(buf[:n])
}

func TestExtractTokenPriority(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	m := NewAuthMiddleware(tm, stubUsers{})
	app := newTestApp(m, m.Handle)

	bearer, _, err := tm.Issue("from-bearer", "a@example.com", domain.RoleUser, 0)
	require.NoError(t, err)
	legacy, _, err := tm.Issue("from-legacy", "b@example.com", domain.RoleUser, 0)
	require.NoError(t, err)
	query, _, err := tm.Issue("from-query", "c@example.com", domain.RoleUser, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/?token="+query, nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set(LegacyTokenHeader, legacy)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-bearer", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/?token="+query, nil)
	req.Header.Set(LegacyTokenHeader, legacy)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-legacy", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/?token="+query, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-query", body(t, resp))
}

func TestHandleRejectsMissingOrInvalidCredential(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	m := NewAuthMiddleware(tm, stubUsers{})
	app := newTestApp(m, m.Handle)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	forged, _, err := NewTokenManager("other", time.Hour).Issue("u1", "a@example.com", domain.RoleAdmin, 0)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a present but invalid bearer header is not bypassed by a valid query token
	valid, _, err := tm.Issue("u1", "a@example.com", domain.RoleUser, 0)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/?token="+valid, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateIsOptional(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	m := NewAuthMiddleware(tm, stubUsers{})
	app := newTestApp(m, m.Authenticate)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body(t, resp))
}

func TestRequireLiveRoleUsesPersistedRow(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	users := stubUsers{users: map[string]*domain.User{
		"demoted":   {ID: "demoted", Role: domain.RoleUser, Status: domain.UserStatusActive},
		"suspended": {ID: "suspended", Role: domain.RoleAdmin, Status: domain.UserStatusSuspended},
		"admin":     {ID: "admin", Role: domain.RoleAdmin, Status: domain.UserStatusActive},
	}}
	m := NewAuthMiddleware(tm, users)
	app := newTestApp(m, m.Handle, m.RequireLiveRole(domain.RoleAdmin))

	cases := map[string]int{
		"demoted":   http.StatusForbidden,
		"suspended": http.StatusForbidden,
		"admin":     http.StatusOK,
		"deleted":   http.StatusUnauthorized,
	}
	for subject, want := range cases {
		// every credential claims ADMIN
		token, _, err := tm.Issue(subject, subject+"@example.com", domain.RoleAdmin, 0)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, subject)
	}
}

func TestRequireRolesTrustsClaims(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	m := NewAuthMiddleware(tm, stubUsers{})
	app := newTestApp(m, m.Handle, RequireRoles(domain.RoleSeller, domain.RoleShopOwner))

	seller, _, err := tm.Issue("s1", "s@example.com", domain.RoleSeller, 0)
	require.NoError(t, err)
	buyer, _, err := tm.Issue("u1", "u@example.com", domain.RoleUser, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+seller)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+buyer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
