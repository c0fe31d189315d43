package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/eshop-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/eshop-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret     = "test-secret-key-for-unit-tests"
	testCookie     = "eshop_session"
	testIssuer     = "eshop-api-test"
	testSessionKey = "00000000-0000-0000-0000-000000000001"
)

func testSessionConfig() apphttp.SessionConfig {
	return apphttp.SessionConfig{
		Secret:     testSecret,
		CookieName: testCookie,
		Issuer:     testIssuer,
		TTL:        time.Hour,
	}
}

// buildSessionApp aplicación mínima que devuelve la clave de sesión resuelta.
func buildSessionApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", apphttp.SessionMiddleware(testSessionConfig()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"session": apphttp.GetSessionKey(c)})
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, prepare func(r *http.Request)) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if prepare != nil {
		prepare(req)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return resp, out["session"]
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookie {
			return ck
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SessionMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Sin cookie ni header → sesión nueva, cookie HttpOnly y header con el token.
func TestSession_SinTokenCreaSesionNueva(t *testing.T) {
	resp, key := whoami(t, buildSessionApp(), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, key)

	ck := sessionCookie(resp)
	require.NotNil(t, ck, "debe emitirse la cookie de sesión")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, ck.Value, resp.Header.Get(apphttp.HeaderSessionToken))

	parsed, err := pkgjwt.Parse(testSecret, ck.Value)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

// Cookie válida → misma sesión y no se reemite la cookie.
func TestSession_CookieValidaReutilizaSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSessionKey, testIssuer, time.Hour)
	require.NoError(t, err)

	resp, key := whoami(t, buildSessionApp(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookie, Value: tok})
	})

	assert.Equal(t, testSessionKey, key)
	assert.Nil(t, sessionCookie(resp))
	assert.Equal(t, tok, resp.Header.Get(apphttp.HeaderSessionToken))
}

// Clientes sin cookies envían el token en X-Session-Token.
func TestSession_HeaderComoAlternativa(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSessionKey, testIssuer, time.Hour)
	require.NoError(t, err)

	_, key := whoami(t, buildSessionApp(), func(r *http.Request) {
		r.Header.Set(apphttp.HeaderSessionToken, tok)
	})
	assert.Equal(t, testSessionKey, key)
}

// Firma con otro secreto → se descarta y se crea una sesión nueva.
func TestSession_FirmaIncorrectaCreaOtraSesion(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", testSessionKey, testIssuer, time.Hour)
	require.NoError(t, err)

	resp, key := whoami(t, buildSessionApp(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookie, Value: tok})
	})
	assert.NotEqual(t, testSessionKey, key)
	assert.NotNil(t, sessionCookie(resp))
}

// Token expirado → sesión nueva.
func TestSession_TokenExpiradoCreaOtraSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSessionKey, testIssuer, -time.Minute)
	require.NoError(t, err)

	_, key := whoami(t, buildSessionApp(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookie, Value: tok})
	})
	assert.NotEqual(t, testSessionKey, key)
}

// Basura en la cookie → sesión nueva.
func TestSession_TokenMalformado(t *testing.T) {
	_, key := whoami(t, buildSessionApp(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookie, Value: "no-es-un-jwt"})
	})
	assert.NotEmpty(t, key)
	assert.NotEqual(t, "no-es-un-jwt", key)
}
