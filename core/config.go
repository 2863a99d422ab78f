package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName string
		Env     string // DEV (local; default), TEST, QA, PROD
		Build   string
		Debug   bool

		RollbarToken string

		// APIBaseURL is the root of the school REST API consumed by the clients.
		APIBaseURL string

		Portal  PortalConfig
		Session SessionConfig
		Redis   RedisConfig
		Client  ClientConfig
		MockAPI MockAPIConfig
	}

	PortalConfig struct {
		Host            string
		Address         string
		ShutdownTimeout time.Duration
		CookieSecure    bool
		IdleTimeout     time.Duration // workspaces unused for longer are dropped
	}

	SessionConfig struct {
		Storage string // memory | file | redis
		Dir     string // file storage root
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	ClientConfig struct {
		Timeout    time.Duration
		RetryDelay time.Duration // delay before the single list retry
	}

	MockAPIConfig struct {
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		AdminEmail         string
		AdminPassword      string
	}
)

// NewConfig loads the configuration from defaults, `config/.env.<env>` and the environment.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "School Portal")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("apiBaseURL", "http://localhost:5000")

	v.SetDefault("portalHost", "localhost")
	v.SetDefault("portalAddress", ":8080")
	v.SetDefault("portalShutdownTimeout", 10*time.Second)
	v.SetDefault("portalCookieSecure", false)
	v.SetDefault("portalIdleTimeout", 24*time.Hour)

	v.SetDefault("sessionStorage", "memory")
	v.SetDefault("sessionDir", defaultSessionDir())

	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("redisPrefix", "portal:session")

	v.SetDefault("clientTimeout", 15*time.Second)
	v.SetDefault("clientRetryDelay", time.Second)

	v.SetDefault("mockapiAddress", ":5000")
	v.SetDefault("mockapiSecretKey", "q7x)3v!e+0b$ks9w@d2&mfa^uz(8hn%c")
	v.SetDefault("mockapiJWTExpirationDelta", 7*24*time.Hour)
	v.SetDefault("mockapiAdminEmail", "admin@school.test")
	v.SetDefault("mockapiAdminPassword", "admin123")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("clientRetryDelay", time.Duration(0))
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		RollbarToken: v.GetString("rollbarToken"),
		APIBaseURL:   strings.TrimRight(v.GetString("apiBaseURL"), "/"),
		Portal: PortalConfig{
			Host:            v.GetString("portalHost"),
			Address:         v.GetString("portalAddress"),
			ShutdownTimeout: v.GetDuration("portalShutdownTimeout"),
			CookieSecure:    v.GetBool("portalCookieSecure"),
			IdleTimeout:     v.GetDuration("portalIdleTimeout"),
		},
		Session: SessionConfig{
			Storage: strings.ToLower(v.GetString("sessionStorage")),
			Dir:     v.GetString("sessionDir"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redisAddr"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
			Prefix:   v.GetString("redisPrefix"),
		},
		Client: ClientConfig{
			Timeout:    v.GetDuration("clientTimeout"),
			RetryDelay: v.GetDuration("clientRetryDelay"),
		},
		MockAPI: MockAPIConfig{
			Address:            v.GetString("mockapiAddress"),
			SecretKey:          v.GetString("mockapiSecretKey"),
			JWTExpirationDelta: v.GetDuration("mockapiJWTExpirationDelta"),
			AdminEmail:         v.GetString("mockapiAdminEmail"),
			AdminPassword:      v.GetString("mockapiAdminPassword"),
		},
	}
}

func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "schoolctl")
	}
	return ".schoolctl"
}
