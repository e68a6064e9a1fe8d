package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dresssync-api/internal/application/auth"
	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
)

// AuthHandler maneja registro, login, perfil y logout.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	secureCookie bool
}

// NewAuthHandler secureCookie marca la cookie como Secure (producción detrás de HTTPS).
func NewAuthHandler(uc *auth.AuthUseCase, secureCookie bool) *AuthHandler {
	return &AuthHandler{uc: uc, secureCookie: secureCookie}
}

// Register godoc
// @Summary      Registrar usuario
// @Description  Sin sesión crea un agente; crear un gerente requiere token de gerente.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, name, role"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var caller *entity.Actor
	if GetIdentity(c) != nil {
		actor := GetActor(c)
		caller = &actor
	}
	user, err := h.uc.Register(c.UserContext(), in, caller)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el JWT y además lo deja en la cookie httpOnly "token".
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if isAuthFailure(err) {
			return unauthorized(c, "UNAUTHORIZED", "credenciales inválidas")
		}
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    out.Token,
		Path:     "/",
		Expires:  out.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.uc.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		if isAuthFailure(err) {
			return unauthorized(c, "UNAUTHORIZED", "usuario no encontrado")
		}
		return err
	}
	return c.JSON(user)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Revoca el token actual hasta su vencimiento y borra la cookie.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SuccessResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), GetIdentity(c)); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.SuccessResponse{Success: true, Message: "sesión cerrada"})
}

// isAuthFailure usuario inexistente o contraseña errónea: ambos responden 401 sin distinguir.
func isAuthFailure(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized)
}
