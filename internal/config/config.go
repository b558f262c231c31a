package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
)

// Config is the application configuration, loaded once at startup and
// reloaded on file change.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	JWT struct {
		Secret         string        `mapstructure:"secret"`
		Issuer         string        `mapstructure:"issuer"`
		Audience       string        `mapstructure:"audience"`
		AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	} `mapstructure:"jwt"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "disputeq")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "disputeq")
	v.SetDefault("database.user", "disputeq")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("auth.jwt.issuer", "disputeq")
	v.SetDefault("auth.jwt.audience", "disputeq-ui")
	v.SetDefault("auth.jwt.access_token_ttl", time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads config.yaml from configPath, applies DISPUTEQ_* environment
// overrides and watches the file for changes. A missing config file is not
// an error; defaults and the environment carry a bare deployment.
func Load(configPath string) error {
	var err error
	once.Do(func() {
		v := viper.New()
		v.SetConfigType("yaml")
		v.SetConfigName("config")
		v.AddConfigPath(configPath)

		setDefaults(v)

		v.SetEnvPrefix("DISPUTEQ")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		fileFound := true
		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config: %w", readErr)
				return
			}
			fileFound = false
		}

		newCfg := &Config{}
		if err = v.Unmarshal(newCfg); err != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if !fileFound {
			return
		}
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			reloaded := &Config{}
			if err := v.Unmarshal(reloaded); err != nil {
				fmt.Printf("Failed to reload config: %v\n", err)
				return
			}
			mu.Lock()
			cfg = reloaded
			mu.Unlock()
		})
	})
	return err
}

// Get returns the current configuration. Load must have been called; a
// bare Get before Load returns a default-valued config so tests can run
// without a config tree.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		v := viper.New()
		setDefaults(v)
		c := &Config{}
		_ = v.Unmarshal(c)
		return c
	}
	return cfg
}

// Set replaces the active configuration. Intended for tests.
func Set(c *Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// GetServerAddr returns the host:port the HTTP server binds.
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the app runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
