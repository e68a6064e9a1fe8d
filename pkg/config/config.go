package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Tipos de base de datos soportados.
const (
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	SMTP    SMTPConfig
	Storage StorageConfig
	Redis   RedisConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	Installed     bool // lo escribe el asistente de instalación en .env
	LogLevel      string
	MigrationsDir string // vacío = migraciones embebidas
}

// IsProduction indica si los errores internos deben ocultarse al cliente.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// DBConfig configuración de la base de datos (postgres, mysql o sqlite).
// Si DatabaseURL no está vacío, se usa como connection string completo (solo postgres/mysql).
type DBConfig struct {
	Type        string
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Path        string // archivo SQLite
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" && c.Type != DBTypeSQLite {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string según el tipo de base de datos.
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMySQL:
		// user:pass@tcp(host:port)/dbname?parseTime=true
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case DBTypeSQLite:
		path := c.Path
		if path == "" {
			path = "dresssync.db"
		}
		return path
	default:
		// Usar url.UserPassword para manejar correctamente caracteres especiales en la contraseña
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := &url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:     "/" + c.DBName,
			RawQuery: fmt.Sprintf("sslmode=%s", sslMode),
		}
		return u.String()
	}
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPConfig configuración de correo saliente. Host vacío = notificaciones desactivadas.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo []string // destinatarios de avisos de pedidos nuevos (gerentes)
}

// Enabled indica si hay servidor SMTP configurado.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// StorageConfig configuración de almacenamiento de archivos subidos.
type StorageConfig struct {
	Driver      string // local | s3
	UploadDir   string
	PublicPath  string // prefijo URL para archivos locales
	MaxUploadMB int

	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PublicURL    string
}

// RedisConfig lista de revocación de tokens. URL vacía = lista en memoria.
type RedisConfig struct {
	URL string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_TYPE, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom igual que Load pero buscando .env / config.env en dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	v.AddConfigPath(dir + "/config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "dresssync"),
			Installed:     getBool(v, "INSTALLED", false),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			MigrationsDir: getString(v, "MIGRATIONS_DIR", ""),
		},
		DB: DBConfig{
			Type:        strings.ToLower(getString(v, "DB_TYPE", DBTypeSQLite)),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			User:        getString(v, "DB_USER", ""),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "dresssync"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Path:        getString(v, "DB_PATH", "dresssync.db"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60*24),
			Issuer:     getString(v, "JWT_ISSUER", "dresssync"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", ""),
			NotifyTo: splitList(getString(v, "MAIL_NOTIFY_TO", "")),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getString(v, "STORAGE_DRIVER", "local")),
			UploadDir:      getString(v, "UPLOAD_DIR", "./uploads"),
			PublicPath:     getString(v, "UPLOAD_PUBLIC_PATH", "/uploads"),
			MaxUploadMB:    getInt(v, "UPLOAD_MAX_MB", 5),
			S3Bucket:       getString(v, "S3_BUCKET", ""),
			S3Region:       getString(v, "S3_REGION", "us-east-1"),
			S3Endpoint:     getString(v, "S3_ENDPOINT", ""),
			S3AccessKey:    getString(v, "S3_ACCESS_KEY", ""),
			S3SecretKey:    getString(v, "S3_SECRET_KEY", ""),
			S3UsePathStyle: getBool(v, "S3_USE_PATH_STYLE", true),
			S3PublicURL:    getString(v, "S3_PUBLIC_URL", ""),
		},
		Redis: RedisConfig{
			URL: getString(v, "REDIS_URL", ""),
		},
	}
	cfg.DB.Port = getInt(v, "DB_PORT", DefaultPort(cfg.DB.Type))

	return cfg, nil
}

// DefaultPort puerto por defecto de cada motor (0 para sqlite).
func DefaultPort(dbType string) int {
	switch dbType {
	case DBTypePostgres:
		return 5432
	case DBTypeMySQL:
		return 3306
	default:
		return 0
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
