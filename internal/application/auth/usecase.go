package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login, perfil y logout.
type AuthUseCase struct {
	tx       repository.TxRunner
	userRepo repository.UserRepository
	denylist ports.TokenDenylist
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx repository.TxRunner, userRepo repository.UserRepository, denylist ports.TokenDenylist, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{tx: tx, userRepo: userRepo, denylist: denylist, jwtCfg: jwtCfg}
}

// HashPassword genera el hash bcrypt de una contraseña.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NormalizeEmail recorta y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAgentProfile ficha de agents para un usuario agente nuevo: activa y sin comisión.
func NewAgentProfile(name, email, phone, region string, now time.Time) *entity.Agent {
	return &entity.Agent{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(name),
		Email:          email,
		Phone:          strings.TrimSpace(phone),
		Region:         strings.TrimSpace(region),
		CommissionRate: decimal.Zero,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Register crea un usuario. Un agente se registra junto con su ficha en agents;
// crear un gerente exige que caller sea gerente. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest, caller *entity.Actor) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = entity.RoleAgent
	}
	if role == entity.RoleManager && (caller == nil || !caller.IsManager()) {
		return nil, domain.ErrForbidden
	}
	email := NormalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if role == entity.RoleAgent {
			agent := NewAgentProfile(user.Name, email, in.Phone, in.Region, now)
			if err := r.Agents.Create(ctx, agent); err != nil {
				return err
			}
			user.AgentID = agent.ID
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, user.AgentID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *ToUserResponse(user),
	}, nil
}

// Me devuelve el usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// Logout revoca el token (por jti) hasta que venza.
func (uc *AuthUseCase) Logout(ctx context.Context, id *jwt.Identity) error {
	if id == nil || id.TokenID == "" {
		return domain.ErrUnauthorized
	}
	until := id.ExpiresAt
	if until.IsZero() {
		until = time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)
	}
	return uc.denylist.Revoke(ctx, id.TokenID, until)
}

// ToUserResponse convierte la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		AgentID:   u.AgentID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
