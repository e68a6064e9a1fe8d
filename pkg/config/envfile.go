package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
)

// EnvFileName nombre del archivo que escribe el asistente de instalación.
const EnvFileName = ".env"

// InstallValues valores que el asistente de instalación persiste en .env.
type InstallValues struct {
	DB           DBConfig
	JWTSecret    string
	SMTP         SMTPConfig
	AppEnv       string
	HTTPPort     int
	ExtraEntries map[string]string
}

// Env convierte los valores a pares KEY=VALUE.
func (iv InstallValues) Env() gotenv.Env {
	env := gotenv.Env{
		"INSTALLED":   "true",
		"DB_TYPE":     iv.DB.Type,
		"DB_HOST":     iv.DB.Host,
		"DB_PORT":     strconv.Itoa(iv.DB.Port),
		"DB_NAME":     iv.DB.DBName,
		"DB_USER":     iv.DB.User,
		"DB_PASSWORD": iv.DB.Password,
		"JWT_SECRET":  iv.JWTSecret,
	}
	if iv.DB.Type == DBTypeSQLite {
		env["DB_PATH"] = iv.DB.Path
	}
	if iv.DB.SSLMode != "" {
		env["DB_SSLMODE"] = iv.DB.SSLMode
	}
	if iv.AppEnv != "" {
		env["APP_ENV"] = iv.AppEnv
	}
	if iv.HTTPPort > 0 {
		env["HTTP_PORT"] = strconv.Itoa(iv.HTTPPort)
	}
	if iv.SMTP.Host != "" {
		env["SMTP_HOST"] = iv.SMTP.Host
		env["SMTP_PORT"] = strconv.Itoa(iv.SMTP.Port)
		env["SMTP_USER"] = iv.SMTP.User
		env["SMTP_PASSWORD"] = iv.SMTP.Password
		env["SMTP_FROM"] = iv.SMTP.From
		env["MAIL_NOTIFY_TO"] = strings.Join(iv.SMTP.NotifyTo, ",")
	}
	for k, v := range iv.ExtraEntries {
		env[k] = v
	}
	return env
}

// WriteEnvFile escribe (o reemplaza) dir/.env conservando las claves existentes que
// el instalador no toca.
func WriteEnvFile(dir string, iv InstallValues) (string, error) {
	path := filepath.Join(dir, EnvFileName)
	merged := gotenv.Env{}
	if f, err := os.Open(path); err == nil {
		existing, perr := gotenv.StrictParse(f)
		_ = f.Close()
		if perr != nil {
			return "", fmt.Errorf("leer %s: %w", path, perr)
		}
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range iv.Env() {
		merged[k] = v
	}
	if err := gotenv.Write(merged, path); err != nil {
		return "", fmt.Errorf("escribir %s: %w", path, err)
	}
	return path, nil
}
