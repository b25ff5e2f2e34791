package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Gestion-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testActorID   = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "gestion-test"
)

// buildAuthApp aplicación mínima: AuthMiddleware y un handler que devuelve el actor.
func buildAuthApp(issuer string) *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, issuer), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"actor_id": apphttp.GetActorID(c)})
	})
	return app
}

func bearer(t *testing.T, secret, issuer, actor string, ttl time.Duration) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, issuer, actor, "Test", ttl)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Data  any     `json:"data"`
		Error *string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body.Data)
	require.NotNil(t, body.Error)
	return *body.Error
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeActor(t *testing.T) {
	app := buildAuthApp(testIssuer)
	resp := doGet(t, app, bearer(t, testJWTSecret, testIssuer, testActorID, time.Hour))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testActorID, body["actor_id"])
}

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	resp := doGet(t, buildAuthApp(""), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "Authorization")
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	cases := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"formato sin Bearer", func(t *testing.T) string { return "Token abc" }},
		{"token vacío", func(t *testing.T) string { return "Bearer   " }},
		{"token malformado", func(t *testing.T) string { return "Bearer token.invalido.aqui" }},
		{"token expirado", func(t *testing.T) string {
			return bearer(t, testJWTSecret, testIssuer, testActorID, -time.Minute)
		}},
		{"secret incorrecto", func(t *testing.T) string {
			return bearer(t, "otro-secret-completamente-distinto", testIssuer, testActorID, time.Hour)
		}},
		{"emisor distinto", func(t *testing.T) string {
			return bearer(t, testJWTSecret, "otro-emisor", testActorID, time.Hour)
		}},
		{"sin sujeto", func(t *testing.T) string {
			return bearer(t, testJWTSecret, testIssuer, "", time.Hour)
		}},
	}
	app := buildAuthApp(testIssuer)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doGet(t, app, tc.header(t))
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, decodeError(t, resp))
		})
	}
}

func TestAuthMiddleware_SinEmisorConfiguradoAceptaCualquiera(t *testing.T) {
	resp := doGet(t, buildAuthApp(""), bearer(t, testJWTSecret, "cualquiera", testActorID, time.Hour))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
