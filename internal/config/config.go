package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Auth       AuthConfig       `yaml:"auth"`
	Booking    BookingConfig    `yaml:"booking"`
	Admin      AdminSeed        `yaml:"admin"`
	Rooms      []RoomSeed       `yaml:"rooms"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	// BusyTimeout is how long a writer waits for the SQLite lock.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	CORS      APICORSConfig      `yaml:"cors"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type APICORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// LoginAttempts caps admin login attempts per client within LoginWindow.
	LoginAttempts int           `yaml:"login_attempts"`
	LoginWindow   time.Duration `yaml:"login_window"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// BookingConfig holds optional house rules for new bookings. Zero values
// leave the rule off.
type BookingConfig struct {
	MaxNights  int  `yaml:"max_nights"`
	RejectPast bool `yaml:"reject_past"`
}

// AdminSeed is the account created on first start when no admin exists.
type AdminSeed struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// RoomSeed describes a room type inserted on first start.
type RoomSeed struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Price       float64  `yaml:"price"`
	Capacity    int      `yaml:"capacity"`
	Description string   `yaml:"description"`
	Amenities   []string `yaml:"amenities"`
	Images      []string `yaml:"images"`
	Videos      []string `yaml:"videos"`
	TotalUnits  int      `yaml:"total_units"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}

	if c.Booking.MaxNights < 0 {
		return errors.New("booking.max_nights must not be negative")
	}

	if c.Admin.Username != "" && c.Admin.Password == "" {
		return errors.New("admin.password is required when admin.username is set")
	}

	return ValidateRooms(c.Rooms)
}

// ValidateRooms checks seed room types with the same rules the admin API applies.
func ValidateRooms(rooms []RoomSeed) error {
	names := make(map[string]bool)
	for i, room := range rooms {
		name := strings.TrimSpace(room.Name)
		if name == "" {
			return fmt.Errorf("room #%d has empty name", i+1)
		}
		key := strings.ToLower(name)
		if names[key] {
			return fmt.Errorf("duplicate room name found: %s", name)
		}
		names[key] = true

		if room.Price < 0 {
			return fmt.Errorf("room '%s' has negative price", name)
		}
		if room.TotalUnits < 1 {
			return fmt.Errorf("room '%s' must have at least one unit", name)
		}
		if room.Capacity < 1 {
			return fmt.Errorf("room '%s' must have capacity of at least 1", name)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hotelbook"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.ReadTimeout == 0 {
		c.API.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.API.RateLimit.LoginAttempts == 0 {
		c.API.RateLimit.LoginAttempts = 5
	}
	if c.API.RateLimit.LoginWindow == 0 {
		c.API.RateLimit.LoginWindow = time.Minute
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	for i := range c.Rooms {
		if c.Rooms[i].Capacity == 0 {
			c.Rooms[i].Capacity = 2
		}
		if c.Rooms[i].TotalUnits == 0 {
			c.Rooms[i].TotalUnits = 1
		}
	}
}
