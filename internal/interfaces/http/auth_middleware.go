package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/pkg/jwt"
)

// Locals keys que deja AuthMiddleware en Fiber.
const (
	LocalUserID   = "user_id"
	LocalRole     = "role"
	LocalAgentID  = "agent_id"
	LocalIdentity = "identity"
)

// TokenCookie cookie httpOnly con el JWT (alternativa al header Authorization).
const TokenCookie = "token"

// AuthConfig secreto JWT y lista de revocación (puede ser nil).
type AuthConfig struct {
	Secret   string
	Denylist ports.TokenDenylist
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// bearerToken extrae el token del header Authorization o, si no viene, de la cookie.
// ok es false cuando el header existe pero no tiene formato Bearer.
func bearerToken(c *fiber.Ctx) (token string, ok bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return strings.TrimSpace(c.Cookies(TokenCookie)), true
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// AuthMiddleware valida el JWT (Bearer o cookie), revisa la lista de revocación y
// deja UserID, Role, AgentID e Identity en c.Locals.
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token requerido")
		}
		id, err := jwt.Parse(cfg.Secret, tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpired) {
				return unauthorized(c, "TOKEN_EXPIRED", "token expirado")
			}
			return unauthorized(c, "INVALID_TOKEN", "token inválido")
		}
		if cfg.Denylist != nil && id.TokenID != "" {
			revoked, err := cfg.Denylist.IsRevoked(c.UserContext(), id.TokenID)
			if err != nil {
				return err
			}
			if revoked {
				return unauthorized(c, "TOKEN_REVOKED", "la sesión fue cerrada")
			}
		}
		setIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth como AuthMiddleware pero sin exigir token: si no hay uno válido sigue como anónimo.
func OptionalAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok || tokenString == "" {
			return c.Next()
		}
		id, err := jwt.Parse(cfg.Secret, tokenString)
		if err != nil {
			return c.Next()
		}
		if cfg.Denylist != nil && id.TokenID != "" {
			if revoked, err := cfg.Denylist.IsRevoked(c.UserContext(), id.TokenID); err != nil || revoked {
				return c.Next()
			}
		}
		setIdentity(c, id)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, id *jwt.Identity) {
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalRole, id.Role)
	c.Locals(LocalAgentID, id.AgentID)
	c.Locals(LocalIdentity, id)
}

// RequireRole deja pasar solo a los roles indicados. Usar después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye rol")
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para este recurso"})
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetAgentID devuelve el agent_id del token (vacío para gerentes).
func GetAgentID(c *fiber.Ctx) string { return localString(c, LocalAgentID) }

// GetIdentity identidad completa del token, o nil si la petición es anónima.
func GetIdentity(c *fiber.Ctx) *jwt.Identity {
	id, _ := c.Locals(LocalIdentity).(*jwt.Identity)
	return id
}

// GetActor arma el actor de los casos de uso.
func GetActor(c *fiber.Ctx) entity.Actor {
	return entity.Actor{UserID: GetUserID(c), Role: GetRole(c), AgentID: GetAgentID(c)}
}
