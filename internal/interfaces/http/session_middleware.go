package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/pkg/jwt"
)

// HeaderSessionToken transporta el token de sesión para clientes sin cookies.
const HeaderSessionToken = "X-Session-Token"

// LocalSessionKey key de Locals con la clave de sesión resuelta.
const LocalSessionKey = "session_key"

// SessionConfig firma y cookie del token de sesión.
type SessionConfig struct {
	Secret     string
	CookieName string
	Issuer     string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware resuelve la sesión anónima desde la cookie o el header X-Session-Token.
// Un token ausente, inválido o expirado se reemplaza por una sesión nueva.
// El token vigente siempre se devuelve en X-Session-Token.
func SessionMiddleware(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.CookieName)
		if token == "" {
			token = c.Get(HeaderSessionToken)
		}
		key := ""
		if token != "" {
			if k, err := jwt.Parse(cfg.Secret, token); err == nil {
				key = k
			}
		}
		if key == "" {
			key = uuid.NewString()
			fresh, err := jwt.Generate(cfg.Secret, key, cfg.Issuer, cfg.TTL)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SESSION", Message: "no se pudo crear la sesión"})
			}
			token = fresh
			c.Cookie(&fiber.Cookie{
				Name:     cfg.CookieName,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(cfg.TTL),
				HTTPOnly: true,
				Secure:   cfg.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Set(HeaderSessionToken, token)
		c.Locals(LocalSessionKey, key)
		return c.Next()
	}
}

// GetSessionKey devuelve la clave de sesión (después de SessionMiddleware).
func GetSessionKey(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionKey).(string)
	return s
}
