// Package install implementa el asistente de primera instalación: prueba de conexión,
// migraciones, gerente inicial, catálogo por defecto y escritura de .env.
package install

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dresssync-api/internal/application/auth"
	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

// DefaultCatalog catálogo inicial cuando product_config está vacío.
var DefaultCatalog = map[string][]string{
	entity.ConfigProductType: {"T-Shirt", "Polo", "Hoodie", "Sweatshirt", "Tank Top"},
	entity.ConfigColor:       {"White", "Black", "Navy Blue", "Red", "Grey"},
	entity.ConfigSize:        {"XS", "S", "M", "L", "XL", "XXL"},
	entity.ConfigNeckType:    {"Round", "V-Neck", "Collar"},
}

// InstallUseCase estado y ejecución de la instalación. Solo se permite una instalación
// por proceso; después hay que reiniciar con la configuración escrita.
type InstallUseCase struct {
	prov      ports.DBProvisioner
	envDir    string
	log       *logger.Logger
	mu        sync.Mutex
	installed bool
	dbType    string
}

// NewInstallUseCase installed y dbType vienen de la configuración cargada al arrancar.
func NewInstallUseCase(prov ports.DBProvisioner, envDir string, installed bool, dbType string, log *logger.Logger) *InstallUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InstallUseCase{prov: prov, envDir: envDir, installed: installed, dbType: dbType, log: log.Component("install")}
}

// Status indica si la aplicación ya está instalada.
func (uc *InstallUseCase) Status() dto.InstallStatusResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return dto.InstallStatusResponse{Installed: uc.installed, DBType: uc.dbType}
}

// TestDB verifica la conexión sin modificar nada.
func (uc *InstallUseCase) TestDB(ctx context.Context, in dto.InstallDBRequest) (*dto.SuccessResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.prov.Ping(ctx, ToDBConfig(in)); err != nil {
		uc.log.Warn().Err(err).Str("db_type", in.Type).Msg("prueba de conexión fallida")
		return nil, domain.NewValidationError("db: no se pudo conectar: " + err.Error())
	}
	return &dto.SuccessResponse{Success: true, Message: "conexión exitosa"}, nil
}

// Install migra la base, crea el gerente, siembra el catálogo y escribe .env.
func (uc *InstallUseCase) Install(ctx context.Context, in dto.InstallRequest) (*dto.InstallResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.installed {
		return nil, domain.ErrAlreadyInstalled
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	// ── 1. Conexión ──────────────────────────────────────────────────────────
	dbCfg := ToDBConfig(in.DB)
	if err := uc.prov.Ping(ctx, dbCfg); err != nil {
		return nil, domain.NewValidationError("db: no se pudo conectar: " + err.Error())
	}

	// ── 2. Migraciones + datos iniciales ─────────────────────────────────────
	hash, err := auth.HashPassword(in.Admin.Password)
	if err != nil {
		return nil, err
	}
	seedCatalog := in.SeedCatalog == nil || *in.SeedCatalog
	applied, err := uc.prov.Provision(ctx, dbCfg, func(ctx context.Context, r repository.Repos) error {
		if err := createManager(ctx, r, in.Admin, hash); err != nil {
			return err
		}
		if !seedCatalog {
			return nil
		}
		return SeedCatalog(ctx, r.ProductConfig)
	})
	if err != nil {
		return nil, err
	}

	// ── 3. Configuración ─────────────────────────────────────────────────────
	secret := strings.TrimSpace(in.JWTSecret)
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return nil, err
		}
	}
	path, err := config.WriteEnvFile(uc.envDir, config.InstallValues{
		DB:        dbCfg,
		JWTSecret: secret,
		SMTP: config.SMTPConfig{
			Host:     strings.TrimSpace(in.SMTP.Host),
			Port:     in.SMTP.Port,
			User:     in.SMTP.User,
			Password: in.SMTP.Password,
			From:     in.SMTP.From,
			NotifyTo: splitEmails(in.SMTP.NotifyTo),
		},
	})
	if err != nil {
		return nil, err
	}

	uc.installed = true
	uc.dbType = dbCfg.Type
	uc.log.Info().Str("db_type", dbCfg.Type).Strs("migrations", applied).Str("env_file", path).Msg("instalación completada")

	if applied == nil {
		applied = []string{}
	}
	return &dto.InstallResponse{
		Success:         true,
		RestartRequired: true,
		Migrations:      applied,
		EnvFile:         path,
		Message:         "instalación completada; reinicie el servidor para aplicar la configuración",
	}, nil
}

func createManager(ctx context.Context, r repository.Repos, in dto.InstallAdminRequest, hash string) error {
	email := auth.NormalizeEmail(in.Email)
	existing, err := r.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailAlreadyExists
	}
	now := time.Now().UTC()
	return r.Users.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         entity.RoleManager,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// SeedCatalog inserta DefaultCatalog si product_config no tiene filas.
func SeedCatalog(ctx context.Context, repo repository.ProductConfigRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, category := range entity.ConfigCategories {
		for i, value := range DefaultCatalog[category] {
			err := repo.Create(ctx, &entity.ProductConfig{
				ID:        uuid.New().String(),
				Category:  category,
				Value:     value,
				SortOrder: i + 1,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ToDBConfig traduce la entrada del asistente; el puerto vacío toma el del motor.
func ToDBConfig(in dto.InstallDBRequest) config.DBConfig {
	cfg := config.DBConfig{
		Type:     strings.ToLower(in.Type),
		Host:     strings.TrimSpace(in.Host),
		Port:     in.Port,
		User:     in.User,
		Password: in.Password,
		DBName:   strings.TrimSpace(in.Name),
		SSLMode:  in.SSLMode,
		Path:     strings.TrimSpace(in.Path),
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort(cfg.Type)
	}
	if cfg.Type == config.DBTypeSQLite && cfg.Path == "" {
		cfg.Path = "dresssync.db"
	}
	return cfg
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func splitEmails(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
		out = append(out, p)
	}
	return out
}
