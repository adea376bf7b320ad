package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Storage   StorageConfig
	Firebase  FirebaseConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env  string
	URL  string
	Port string
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	Path        string
	AutoMigrate bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type StorageConfig struct {
	Disk   string
	Root   string
	Bucket string
}

type FirebaseConfig struct {
	CredentialsFile string
	FCMEnabled      bool
	FirestoreMirror bool
}

type RateLimitConfig struct {
	AuthPerMinute int
}

const devJWTSecret = "dev-secret-change-in-production"

// source resolves a key from the process environment first, then from the
// optional YAML overlay.
type source struct {
	overlay map[string]string
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), and builds the typed configuration. Environment variables always win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	src := source{overlay: map[string]string{}}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		overlay, err := readOverlay(path)
		if err != nil {
			return nil, err
		}
		src.overlay = overlay
	}
	return src.build()
}

func readOverlay(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var values map[string]interface{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	overlay := make(map[string]string, len(values))
	for k, v := range values {
		if list, ok := v.([]interface{}); ok {
			overlay[strings.ToUpper(k)] = strings.Join(cast.ToStringSlice(list), ",")
			continue
		}
		overlay[strings.ToUpper(k)] = cast.ToString(v)
	}
	return overlay, nil
}

func (s source) build() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:  s.getEnv("APP_ENV", "development"),
			URL:  strings.TrimRight(s.getEnv("APP_URL", "http://localhost:8080"), "/"),
			Port: s.getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(s.getEnv("DB_DRIVER", "mysql")),
			Host:        s.getEnv("DB_HOST", "127.0.0.1"),
			Port:        s.getEnvAsInt("DB_PORT", 3306),
			User:        s.getEnv("DB_USER", "root"),
			Password:    s.getEnv("DB_PASSWORD", ""),
			Name:        s.getEnv("DB_NAME", "projectdesk"),
			Path:        s.getEnv("DB_PATH", "projectdesk.db"),
			AutoMigrate: s.getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret: s.getEnv("JWT_SECRET_KEY", ""),
			TTL:    s.getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: s.getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Disk:   strings.ToLower(s.getEnv("STORAGE_DISK", "local")),
			Root:   s.getEnv("STORAGE_ROOT", "storage/app"),
			Bucket: s.getEnv("STORAGE_BUCKET", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: s.getEnv("GOOGLE_APPLICATION_CREDENTIALS_1", ""),
			FCMEnabled:      s.getEnvAsBool("FCM_ENABLED", false),
			FirestoreMirror: s.getEnvAsBool("FIRESTORE_MIRROR", false),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: s.getEnvAsInt("AUTH_RATE_PER_MINUTE", 30),
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("config: JWT_SECRET_KEY is required in production")
		}
		cfg.JWT.Secret = devJWTSecret
	}
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	switch cfg.Storage.Disk {
	case "local":
	case "gcs":
		if cfg.Storage.Bucket == "" {
			return nil, fmt.Errorf("config: STORAGE_BUCKET is required for the gcs disk")
		}
	default:
		return nil, fmt.Errorf("config: unsupported STORAGE_DISK %q", cfg.Storage.Disk)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// NeedsFirebase reports whether any component requires a Firebase app.
func (c *Config) NeedsFirebase() bool {
	return c.Firebase.FCMEnabled || c.Firebase.FirestoreMirror || c.Storage.Disk == "gcs"
}

// MySQLDSN renders the connection string for the mysql driver.
func (d DatabaseConfig) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, cast.ToString(d.Port))
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func (s source) lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value, true
	}
	value, ok := s.overlay[key]
	return value, ok && value != ""
}

func (s source) getEnv(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (s source) getEnvAsInt(key string, defaultValue int) int {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func (s source) getEnvAsBool(key string, defaultValue bool) bool {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvAsDuration accepts Go durations ("15m", "168h") or a bare number of minutes.
func (s source) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if minutes, err := cast.ToInt64E(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}

func (s source) getEnvAsList(key string, defaultValue []string) []string {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
