package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const dockerHostAlias = "host.docker.internal"

type Config struct {
	DBDriver    string
	DBDSN       string
	DBServer    string
	DBPort      string
	DBInstance  string
	DBUser      string
	DBPassword  string
	DBName      string
	DBEncrypt   bool
	DBTrustCert bool

	ServerPort    string
	SessionSecret string
	AuthRequired  bool
	AdminUsername string
	AdminPassword string

	InDocker   bool
	UploadsDir string
	WebDir     string
	LogLevel   string

	JobsSchedule string
	TempMaxAge   time.Duration

	// variables obligatorias ausentes en el contenedor; main las reporta
	Missing []string
}

// Load lee el .env (si existe) y las variables de entorno.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv, fileExists("/.dockerenv"))
}

// FromEnv arma la configuración desde cualquier fuente de variables;
// dockerenv indica si existe /.dockerenv.
func FromEnv(getenv func(string) string, dockerenv bool) *Config {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		DBDriver:      strings.ToLower(get("DB_DRIVER", "postgres")),
		DBDSN:         getenv("DB_DSN"),
		DBPort:        get("DB_PORT", "5432"),
		DBUser:        get("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD"),
		DBName:        get("DB_NAME", "callcenter"),
		DBEncrypt:     get("DB_ENCRYPT", "false") == "true",
		DBTrustCert:   get("DB_TRUST_CERT", "true") == "true",
		ServerPort:    get("PORT", "4000"),
		SessionSecret: getenv("SESSION_SECRET"),
		AuthRequired:  get("AUTH_REQUIRED", "false") == "true",
		AdminUsername: get("ADMIN_USERNAME", "admin"),
		AdminPassword: get("ADMIN_PASSWORD", "Admin123!"),
		InDocker:      getenv("DOCKER") == "true" || dockerenv,
		WebDir:        get("WEB_DIR", "./web"),
		LogLevel:      get("LOG_LEVEL", "info"),
		JobsSchedule:  get("JOBS_SCHEDULE", "@every 1h"),
		TempMaxAge:    time.Hour,
	}

	if d, err := time.ParseDuration(get("TEMP_MAX_AGE", "")); err == nil && d > 0 {
		cfg.TempMaxAge = d
	}

	host, instance := ProcessServerName(get("DB_SERVER", "localhost"), cfg.InDocker)
	cfg.DBServer = host
	cfg.DBInstance = get("DB_INSTANCE", instance)

	if cfg.InDocker {
		cfg.UploadsDir = get("UPLOADS_DIR", "./uploads")
		for _, key := range []string{"DB_SERVER", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
			if strings.TrimSpace(getenv(key)) == "" {
				cfg.Missing = append(cfg.Missing, key)
			}
		}
	} else {
		cfg.UploadsDir = get("UPLOADS_DIR", "../uploads")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
	}

	return cfg
}

// TempDir: carpeta de archivos subidos para importar
func (c *Config) TempDir() string {
	return filepath.Join(c.UploadsDir, "temp")
}

// DSN arma la cadena de conexión para el driver configurado.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == "sqlite" {
		return c.DBName
	}

	sslmode := "disable"
	if c.DBEncrypt {
		sslmode = "verify-full"
		if c.DBTrustCert {
			sslmode = "require"
		}
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=30",
		dsnValue(c.DBServer), dsnValue(c.DBPort), dsnValue(c.DBUser), dsnValue(c.DBPassword), dsnValue(c.DBName), sslmode)
	if c.DBInstance != "" {
		dsn += " search_path=" + dsnValue(c.DBInstance)
	}
	return dsn
}

// dsnValue entrecomilla un valor del DSN key=value cuando está vacío o lleva
// espacios, comillas o barras invertidas.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

var windowsServerPattern = regexp.MustCompile(`(?i)^[A-Z0-9_-]+(\\[A-Z0-9_-]+)?$`)

// ProcessServerName separa "HOST\INSTANCIA" y, dentro de un contenedor,
// reemplaza un nombre de máquina Windows por host.docker.internal.
func ProcessServerName(server string, inDocker bool) (host, instance string) {
	if server == "" {
		return "localhost", ""
	}

	host = server
	if i := strings.Index(server, `\`); i >= 0 {
		host, instance = server[:i], server[i+1:]
	}

	if inDocker && windowsServerPattern.MatchString(server) && looksLikeWindowsHost(host, instance) {
		host = dockerHostAlias
	}
	return host, instance
}

// Solo se reescriben nombres de máquina Windows ("WIN-XXXX", "HOST\INSTANCIA")
// y localhost; los nombres de servicio de compose ("postgres", "db") se respetan.
func looksLikeWindowsHost(host, instance string) bool {
	upper := strings.ToUpper(host)
	return instance != "" || strings.HasPrefix(upper, "WIN-") || upper == "LOCALHOST"
}

// MaskedPassword muestra solo los extremos de la contraseña para los logs.
func (c *Config) MaskedPassword() string {
	p := c.DBPassword
	switch {
	case p == "":
		return "NO DEFINIDA"
	case len(p) <= 4:
		return fmt.Sprintf("*** (length: %d)", len(p))
	default:
		return fmt.Sprintf("%s***%s (length: %d)", p[:2], p[len(p)-2:], len(p))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "cobranzas-dev-secret"
	}
	return hex.EncodeToString(b)
}
