package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8080"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction

	defaultRedisHost             = "localhost"
	defaultRedisPort             = 6379
	defaultRedisCommandTimeoutMs = 3 * 1000

	defaultLocale = "en"

	// Token lifetimes, milliseconds
	defaultAccessExpiresInMs     = 15 * 60 * 1000
	defaultRefreshExpiresInMs    = 24 * 60 * 60 * 1000
	defaultRememberMeExpiresInMs = 30 * 24 * 60 * 60 * 1000
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key used to sign JWT tokens
	SecretKey string

	// Environment
	Environment string

	// Token lifetimes, milliseconds
	AccessExpiresInMs     int64
	RefreshExpiresInMs    int64
	RememberMeExpiresInMs int64

	// Redis connection for the token store
	RedisHost             string
	RedisPort             int
	RedisDB               int
	RedisPassword         string
	RedisCommandTimeoutMs int64

	// Locale used when Accept-Language matches nothing
	DefaultLocale string

	// Serve the API without authentication. Local smoke checks only
	SecurityDisabled bool
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,

		AccessExpiresInMs:     defaultAccessExpiresInMs,
		RefreshExpiresInMs:    defaultRefreshExpiresInMs,
		RememberMeExpiresInMs: defaultRememberMeExpiresInMs,

		RedisHost:             defaultRedisHost,
		RedisPort:             defaultRedisPort,
		RedisCommandTimeoutMs: defaultRedisCommandTimeoutMs,

		DefaultLocale: defaultLocale,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	var errs []error

	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			parsed, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("not a number: %q", value))
				return
			}
			*o = parsed
		}
	}
	setInt64 := func(o *int64) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("not a number: %q", value))
				return
			}
			*o = parsed
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("not a bool: %q", value))
				return
			}
			*o = parsed
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":  setString(&c.ListenAddr),
		"DATABASE_URI": setString(&c.DatabaseDSN),
		"SECRET_KEY":   setString(&c.SecretKey),
		"LOG_LEVEL":    setString(&c.LogLevel),
		"ENVIRONMENT":  setString(&c.Environment),

		"JWT_ACCESS_EXPIRES_IN_MS":      setInt64(&c.AccessExpiresInMs),
		"JWT_REFRESH_EXPIRES_IN_MS":     setInt64(&c.RefreshExpiresInMs),
		"JWT_REMEMBER_ME_EXPIRES_IN_MS": setInt64(&c.RememberMeExpiresInMs),

		"REDIS_HOST":               setString(&c.RedisHost),
		"REDIS_PORT":               setInt(&c.RedisPort),
		"REDIS_DB":                 setInt(&c.RedisDB),
		"REDIS_PASSWORD":           setString(&c.RedisPassword),
		"REDIS_COMMAND_TIMEOUT_MS": setInt64(&c.RedisCommandTimeoutMs),

		"DEFAULT_LOCALE":    setString(&c.DefaultLocale),
		"SECURITY_DISABLED": setBool(&c.SecurityDisabled),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("restapi", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis host for the token store")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port for the token store")
	fs.StringVar(&c.DefaultLocale, "locale", c.DefaultLocale, "Fallback locale for response messages")
	fs.BoolVar(&c.SecurityDisabled, "security-disabled", c.SecurityDisabled, "Serve the API without authentication")

	return fs.Parse(args)
}
