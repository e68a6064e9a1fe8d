package dto

// InstallDBRequest datos de conexión ingresados en el asistente.
type InstallDBRequest struct {
	Type     string `json:"type" validate:"required,oneof=postgres mysql sqlite"`
	Host     string `json:"host" validate:"required_unless=Type sqlite"`
	Port     int    `json:"port" validate:"gte=0,lte=65535"`
	Name     string `json:"name" validate:"required_unless=Type sqlite"`
	User     string `json:"user"`
	Password string `json:"password"`
	Path     string `json:"path"`
	SSLMode  string `json:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full prefer allow"`
}

// InstallSMTPRequest configuración de correo opcional.
type InstallSMTPRequest struct {
	Host     string `json:"host"`
	Port     int    `json:"port" validate:"gte=0,lte=65535"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from" validate:"omitempty,email"`
	NotifyTo string `json:"notify_to"`
}

// InstallAdminRequest gerente inicial.
type InstallAdminRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// InstallRequest entrada completa de la instalación.
type InstallRequest struct {
	DB          InstallDBRequest    `json:"db"`
	JWTSecret   string              `json:"jwt_secret" validate:"omitempty,min=16"`
	SMTP        InstallSMTPRequest  `json:"smtp"`
	Admin       InstallAdminRequest `json:"admin"`
	SeedCatalog *bool               `json:"seed_catalog"`
}

// InstallStatusResponse estado de la instalación.
type InstallStatusResponse struct {
	Installed bool   `json:"installed"`
	DBType    string `json:"db_type"`
}

// InstallResponse resultado de la instalación.
type InstallResponse struct {
	Success         bool     `json:"success"`
	RestartRequired bool     `json:"restart_required"`
	Migrations      []string `json:"migrations"`
	EnvFile         string   `json:"env_file"`
	Message         string   `json:"message"`
}
