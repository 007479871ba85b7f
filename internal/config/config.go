// Package config собирает конфигурацию сервиса из значений по умолчанию,
// YAML-файла, файла .env и переменных окружения SCORING_*.
// Флаги командной строки накладываются поверх в cmd/scoring-server.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix — префикс переменных окружения.
const EnvPrefix = "SCORING_"

var validate = validator.New()

// Config — настройки сервиса.
type Config struct {
	Host           string        `yaml:"host" validate:"required"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	LogFile        string        `yaml:"log_file"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat      string        `yaml:"log_format" validate:"oneof=text json"`
	Salt           string        `yaml:"salt" validate:"required"`
	AdminSalt      string        `yaml:"admin_salt" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gt=0"`
	MetricsAddr    string        `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	StoreSeed      string        `yaml:"store_seed"`
	CacheTTL       time.Duration `yaml:"cache_ttl" validate:"gt=0"`
	Redis          RedisConfig   `yaml:"redis"`
}

// RedisConfig — подключение к Redis. Пустой Addr означает хранилище в памяти.
type RedisConfig struct {
	Addr        string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db" validate:"gte=0"`
	DialTimeout time.Duration `yaml:"dial_timeout" validate:"gt=0"`
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gt=0"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=-1"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		LogLevel:       "info",
		LogFormat:      "text",
		Salt:           "Otus",
		AdminSalt:      "42",
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 20,
		CacheTTL:       time.Hour,
		Redis: RedisConfig{
			DialTimeout: 3 * time.Second,
			ReadTimeout: 3 * time.Second,
			MaxRetries:  3,
		},
	}
}

// Addr — адрес, который слушает HTTP-сервер.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если path не пуст), затем .env из dotenv (если файл есть) и окружение.
func Load(path, dotenv string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv накладывает переменные окружения SCORING_* на cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HOST":           &cfg.Host,
		"LOG":            &cfg.LogFile,
		"LOG_LEVEL":      &cfg.LogLevel,
		"LOG_FORMAT":     &cfg.LogFormat,
		"SALT":           &cfg.Salt,
		"ADMIN_SALT":     &cfg.AdminSalt,
		"METRICS_ADDR":   &cfg.MetricsAddr,
		"STORE_SEED":     &cfg.StoreSeed,
		"REDIS_ADDR":     &cfg.Redis.Addr,
		"REDIS_PASSWORD": &cfg.Redis.Password,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":              &cfg.Port,
		"REDIS_DB":          &cfg.Redis.DB,
		"REDIS_MAX_RETRIES": &cfg.Redis.MaxRetries,
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":    &cfg.RequestTimeout,
		"CACHE_TTL":          &cfg.CacheTTL,
		"REDIS_DIAL_TIMEOUT": &cfg.Redis.DialTimeout,
		"REDIS_READ_TIMEOUT": &cfg.Redis.ReadTimeout,
	}
	for name, dst := range durations {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvPrefix + "MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxBodyBytes = n
	}
	return nil
}

// Validate проверяет конфигурацию и собирает все нарушения в одну ошибку.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	msgs := make([]string, 0, len(valErrs))
	for _, fe := range valErrs {
		msgs = append(msgs, fe.Namespace()+": "+formatValidationError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// formatValidationError переводит ошибку validator в читаемое сообщение.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "hostname_port":
		return "must be host:port"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
