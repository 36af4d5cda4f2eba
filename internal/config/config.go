// internal/config/config.go
// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Config holds the application's configuration, loaded from .env and the environment.
type Config struct {
	LIMSURL        string        `validate:"required,url"`
	LIMSToken      string        `validate:"required"`
	RequestTimeout time.Duration `validate:"min=1s"`
	APIHost        string        `validate:"required"`
	Port           int           `validate:"required,min=1,max=65535"`
	APIToken       string        `validate:"required"`
	// ReadOnlyAPIToken may compose batches but not submit them.
	ReadOnlyAPIToken string `validate:"omitempty,nefield=APIToken"`
	// QCRequiredBatchTypes lists batch type ids for which a batch must carry QC samples.
	QCRequiredBatchTypes   []string
	EligibleSamplePageSize int `validate:"min=1,max=5000"`
	// SessionIdleTimeout is how long a wizard may go untouched before it is unmounted.
	SessionIdleTimeout time.Duration `validate:"min=1m"`
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, raw := range parts {
		if item := strings.TrimSpace(raw); item != "" && !slices.Contains(items, item) {
			items = append(items, item)
		}
	}
	return items
}

// Load loads and validates the application configuration from config/.env.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom loads configuration from the given .env file, overlaid by the environment.
// A missing file is not an error.
func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetDefault("API_HOST", DefaultAPIHost)
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("ELIGIBLE_SAMPLE_PAGE_SIZE", DefaultEligibleSamplePageSize)
	v.SetDefault("LIMS_REQUEST_TIMEOUT", DefaultRequestTimeout)
	v.SetDefault("SESSION_IDLE_TIMEOUT", DefaultSessionIdleTimeout)

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	appConfig := &Config{
		LIMSURL:                strings.TrimSuffix(v.GetString("LIMS_API_URL"), "/"),
		LIMSToken:              v.GetString("LIMS_API_TOKEN"),
		RequestTimeout:         v.GetDuration("LIMS_REQUEST_TIMEOUT"),
		APIHost:                v.GetString("API_HOST"),
		Port:                   v.GetInt("PORT"),
		APIToken:               v.GetString("API_TOKEN"),
		ReadOnlyAPIToken:       v.GetString("READONLY_API_TOKEN"),
		QCRequiredBatchTypes:   parseList(v.GetString("QC_REQUIRED_BATCH_TYPES")),
		EligibleSamplePageSize: v.GetInt("ELIGIBLE_SAMPLE_PAGE_SIZE"),
		SessionIdleTimeout:     v.GetDuration("SESSION_IDLE_TIMEOUT"),
	}

	if err := validate.Struct(appConfig); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return appConfig, nil
}
