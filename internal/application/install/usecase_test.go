package install_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subosito/gotenv"

	"github.com/jhoicas/dresssync-api/internal/application/dto"
	"github.com/jhoicas/dresssync-api/internal/application/install"
	"github.com/jhoicas/dresssync-api/internal/domain"
	"github.com/jhoicas/dresssync-api/internal/domain/entity"
	"github.com/jhoicas/dresssync-api/internal/domain/repository"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/database"
	"github.com/jhoicas/dresssync-api/internal/infrastructure/sqlstore"
	"github.com/jhoicas/dresssync-api/pkg/config"
)

type failingProvisioner struct{}

func (failingProvisioner) Ping(context.Context, config.DBConfig) error {
	return errors.New("connection refused")
}

func (failingProvisioner) Provision(context.Context, config.DBConfig, func(context.Context, repository.Repos) error) ([]string, error) {
	return nil, errors.New("no debería llamarse")
}

func request(dbPath string) dto.InstallRequest {
	return dto.InstallRequest{
		DB:    dto.InstallDBRequest{Type: "sqlite", Path: dbPath},
		Admin: dto.InstallAdminRequest{Name: "Gerente", Email: "Gerente@Example.com", Password: "secreto123"},
		SMTP:  dto.InstallSMTPRequest{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com", NotifyTo: "a@example.com, b@example.com"},
	}
}

func TestInstall_SQLiteCompleto(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "dresssync.db")
	uc := install.NewInstallUseCase(sqlstore.NewProvisioner("", nil), dir, false, "", nil)
	ctx := context.Background()

	assert.False(t, uc.Status().Installed)

	resp, err := uc.Install(ctx, request(dbPath))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.RestartRequired)
	assert.NotEmpty(t, resp.Migrations)
	assert.Equal(t, dto.InstallStatusResponse{Installed: true, DBType: "sqlite"}, uc.Status())

	// .env escrito con los valores de la instalación
	f, err := os.Open(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	env, err := gotenv.StrictParse(f)
	_ = f.Close()
	require.NoError(t, err)
	assert.Equal(t, "true", env["INSTALLED"])
	assert.Equal(t, "sqlite", env["DB_TYPE"])
	assert.Equal(t, dbPath, env["DB_PATH"])
	assert.Len(t, env["JWT_SECRET"], 64)
	assert.Equal(t, "a@example.com,b@example.com", env["MAIL_NOTIFY_TO"])

	// gerente y catálogo en la base
	db, err := database.Open(ctx, config.DBConfig{Type: config.DBTypeSQLite, Path: dbPath})
	require.NoError(t, err)
	defer db.Close()
	repos := sqlstore.NewRepos(db)

	admin, err := repos.Users.GetByEmail(ctx, "gerente@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, entity.RoleManager, admin.Role)

	n, err := repos.ProductConfig.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19, n)

	_, err = uc.Install(ctx, request(dbPath))
	assert.ErrorIs(t, err, domain.ErrAlreadyInstalled)
}

func TestInstall_ConexionFallidaEsValidacion(t *testing.T) {
	uc := install.NewInstallUseCase(failingProvisioner{}, t.TempDir(), false, "", nil)

	_, err := uc.TestDB(context.Background(), dto.InstallDBRequest{Type: "postgres", Host: "db", Name: "dresssync"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Install(context.Background(), dto.InstallRequest{
		DB:    dto.InstallDBRequest{Type: "postgres", Host: "db", Name: "dresssync"},
		Admin: dto.InstallAdminRequest{Name: "G", Email: "g@example.com", Password: "secreto123"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, uc.Status().Installed)
}

func TestInstall_ValidaEntrada(t *testing.T) {
	uc := install.NewInstallUseCase(failingProvisioner{}, t.TempDir(), false, "", nil)
	_, err := uc.Install(context.Background(), dto.InstallRequest{
		DB:    dto.InstallDBRequest{Type: "oracle"},
		Admin: dto.InstallAdminRequest{Name: "G", Email: "no-es-email", Password: "corta"},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Messages), 3)
}

func TestToDBConfig_PuertoPorDefecto(t *testing.T) {
	cfg := install.ToDBConfig(dto.InstallDBRequest{Type: "MySQL", Host: " db ", Name: "shop"})
	assert.Equal(t, config.DBTypeMySQL, cfg.Type)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "db", cfg.Host)
}
