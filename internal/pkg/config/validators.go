// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks one aspect of a loaded configuration
type Validator interface {
	Validate(cfg *Config) error
}

var (
	storageBackends = map[string]bool{"memory": true, "file": true, "redis": true, "postgres": true}
	feedTransports  = map[string]bool{"websocket": true, "redis": true, "kafka": true}
)

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if _, err := url.ParseRequestURI(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("api base url %q is invalid: %w", cfg.API.BaseURL, err)
	}
	if !storageBackends[cfg.Storage.Backend] {
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "file" && cfg.Storage.FilePath == "" {
		return fmt.Errorf("%w: storage file path", ErrMissingRequiredConfig)
	}
	if !feedTransports[cfg.Feed.Transport] {
		return fmt.Errorf("unknown feed transport %q", cfg.Feed.Transport)
	}
	if cfg.Feed.Transport == "kafka" && (len(cfg.Feed.Brokers) == 0 || cfg.Feed.GroupID == "") {
		return fmt.Errorf("%w: kafka brokers and group id", ErrMissingRequiredConfig)
	}

	if cfg.Editor.Debounce < 0 {
		return fmt.Errorf("stock debounce must not be negative")
	}
	if cfg.Loader.PageSize <= 0 || cfg.Loader.SellerPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}
	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}
	if cfg.Server.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

func (v *ProductionValidator) Validate(cfg *Config) error {
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}
	if cfg.Storage.Backend == "postgres" && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api base url must use https in production")
	}
	if cfg.Storage.Backend == "memory" {
		return fmt.Errorf("memory storage loses the cart on restart and is not allowed in production")
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}
	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
