package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehub/movie-service/internal/core/service"
	"github.com/moviehub/movie-service/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T, opts ...func(*Deps)) *echo.Echo {
	t.Helper()
	users := memory.NewUserRepository()
	hasher := service.NewBcryptHasher(service.DefaultHashCost, nil)
	reg := prometheus.NewRegistry()

	deps := Deps{
		Identity:       service.NewIdentityService(users, hasher, zerolog.Nop()),
		Tokens:         service.NewTokenService(users, "router-test-secret", time.Hour),
		Movies:         service.NewMovieService(memory.NewMovieRepository(), zerolog.Nop()),
		GeneralRPM:     1000,
		AuthRPM:        1000,
		AllowedOrigins: []string{"*"},
		Registerer:     reg,
		Gatherer:       reg,
		Log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return NewRouter(deps)
}

func call(t *testing.T, e *echo.Echo, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func registerAndLogin(t *testing.T, e *echo.Echo, email, role string) (token, id string) {
	t.Helper()
	body := `{"email":"` + email + `","password":"password1"`
	if role != "" {
		body += `,"role":"` + role + `"`
	}
	code, resp := call(t, e, http.MethodPost, "/auth/register", "", body+"}")
	require.Equal(t, http.StatusCreated, code, resp)

	code, resp = call(t, e, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"password1"}`)
	require.Equal(t, http.StatusOK, code, resp)
	user := resp["user"].(map[string]any)
	return resp["token"].(string), user["id"].(string)
}

const movieBody = `{"title":"Inception","description":"A thief who steals corporate secrets through dreams.",
"releaseDate":"2010-07-16","rating":5,"category":"thriller","actors":["Leonardo DiCaprio"],
"poster":"https://img.example/inception.jpg"}`

func TestRouter_OwnershipScenario(t *testing.T) {
	e := newTestRouter(t)

	tokenA, idA := registerAndLogin(t, e, "a@example.com", "")
	tokenB, _ := registerAndLogin(t, e, "b@example.com", "")
	tokenAdmin, _ := registerAndLogin(t, e, "root@example.com", "admin")

	code, _ := call(t, e, http.MethodPost, "/auth/register", "", `{"email":"a@example.com","password":"password2"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, e, http.MethodGet, "/auth/protected", tokenA, "")
	assert.Equal(t, http.StatusOK, code)

	code, movie := call(t, e, http.MethodPost, "/movies", tokenA, movieBody)
	require.Equal(t, http.StatusCreated, code, movie)
	assert.Equal(t, idA, movie["createdBy"])
	movieID := movie["id"].(string)

	code, list := call(t, e, http.MethodGet, "/movies/user/"+idA, "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, list["count"])

	code, resp := call(t, e, http.MethodPatch, "/movies/"+movieID, tokenB, `{"rating":1}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", resp["kind"])

	code, updated := call(t, e, http.MethodPut, "/movies/"+movieID, tokenAdmin, `{"rating":4}`)
	require.Equal(t, http.StatusOK, code, updated)
	assert.EqualValues(t, 4, updated["rating"])
	assert.Equal(t, "Inception", updated["title"])
	assert.Equal(t, idA, updated["createdBy"])

	code, _ = call(t, e, http.MethodDelete, "/movies/"+movieID, tokenB, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, e, http.MethodDelete, "/movies/"+movieID, tokenA, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, e, http.MethodDelete, "/movies/"+movieID, tokenA, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_AuthFailures(t *testing.T) {
	e := newTestRouter(t)
	registerAndLogin(t, e, "a@example.com", "")

	code, resp := call(t, e, http.MethodPost, "/auth/login", "", `{"email":"a@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", resp["kind"])

	code, _ = call(t, e, http.MethodPost, "/auth/login", "", `{"email":"ghost@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = call(t, e, http.MethodPost, "/movies", "", movieBody)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", resp["kind"])

	code, resp = call(t, e, http.MethodPost, "/movies", "garbage", movieBody)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", resp["kind"])
	assert.Equal(t, "invalid token", resp["error"])

	code, resp = call(t, e, http.MethodGet, "/users?email=a@example.com", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", resp["kind"])

	req := httptest.NewRequest(http.MethodGet, "/auth/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"invalid_token"`)

	code, resp = call(t, e, http.MethodPost, "/auth/register", "", `{"email":"bad","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, resp["violations"], 2)
}

func TestRouter_AdminUserLookup(t *testing.T) {
	e := newTestRouter(t)
	tokenUser, _ := registerAndLogin(t, e, "a@example.com", "")
	tokenAdmin, _ := registerAndLogin(t, e, "root@example.com", "admin")

	code, _ := call(t, e, http.MethodGet, "/users?email=a@example.com", tokenUser, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, user := call(t, e, http.MethodGet, "/users?email=a@example.com", tokenAdmin, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a@example.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(t)

	code, resp := call(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])

	code, resp = call(t, e, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_EndToEndScenario(t *testing.T) {
	e := newTestRouter(t)

	code, resp := call(t, e, http.MethodPost, "/auth/register", "", `{"email":"user@test.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusCreated, code, resp)

	code, resp = call(t, e, http.MethodPost, "/auth/login", "", `{"email":"user@test.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, code, resp)
	owner, _ := resp["token"].(string)
	require.NotEmpty(t, owner)

	other, _ := registerAndLogin(t, e, "other@test.com", "")
	admin, _ := registerAndLogin(t, e, "admin@test.com", "admin")

	code, created := call(t, e, http.MethodPost, "/movies", owner, movieBody)
	require.Equal(t, http.StatusCreated, code, created)
	path := "/movies/" + created["id"].(string)

	// A one-character title breaks the 2-120 rule.
	code, resp = call(t, e, http.MethodPatch, path, owner, `{"title":"X"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", resp["kind"])

	code, updated := call(t, e, http.MethodPatch, path, owner, `{"title":"XY"}`)
	require.Equal(t, http.StatusOK, code, updated)
	assert.Equal(t, "XY", updated["title"])
	for _, field := range []string{"description", "releaseDate", "rating", "category", "actors", "poster", "createdBy"} {
		assert.Equal(t, created[field], updated[field], field)
	}

	code, resp = call(t, e, http.MethodPatch, path, other, `{"title":"XY"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", resp["kind"])

	code, resp = call(t, e, http.MethodPatch, path, admin, `{"title":"XY"}`)
	assert.Equal(t, http.StatusOK, code, resp)

	code, _ = call(t, e, http.MethodDelete, path, owner, "")
	assert.Equal(t, http.StatusOK, code)

	code, resp = call(t, e, http.MethodDelete, path, owner, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", resp["kind"])
}

func authStatuses(e *echo.Echo, n int, forwardedFor func(i int) string) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/unknown", nil)
		if forwardedFor != nil {
			req.Header.Set(echo.HeaderXForwardedFor, forwardedFor(i))
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	return codes
}

func TestRouter_RateLimitIgnoresForwardedFor(t *testing.T) {
	e := newTestRouter(t, func(d *Deps) { d.AuthRPM = 2 })

	codes := authStatuses(e, 5, func(i int) string { return fmt.Sprintf("203.0.113.%d", i+1) })

	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRouter_RateLimitTrustsConfiguredProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	_, proxy, err := net.ParseCIDR("192.0.2.0/24")
	require.NoError(t, err)
	e := newTestRouter(t, func(d *Deps) {
		d.AuthRPM = 2
		d.TrustedProxies = []*net.IPNet{proxy}
	})

	codes := authStatuses(e, 4, func(i int) string { return fmt.Sprintf("203.0.113.%d", i+1) })
	for _, code := range codes {
		assert.Equal(t, http.StatusNotFound, code)
	}

	codes = authStatuses(e, 3, func(int) string { return "203.0.113.200" })
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
