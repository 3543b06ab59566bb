// Package config loads archsync settings from viper (config file, environment,
// flags) and validates them.
package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/agentstation/archsync/internal/pattern"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
)

// Keys shared by the config file, ARCHSYNC_* environment variables and flags.
const (
	KeyProject            = "project"
	KeyBinary             = "binary"
	KeyThreshold          = "threshold"
	KeyTop                = "top"
	KeyInclude            = "include"
	KeyExclude            = "exclude"
	KeySkipLocals         = "skip_locals"
	KeySkipSignatures     = "skip_signatures"
	KeyOverwriteConfirmed = "overwrite_confirmed"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
)

// Keys returns every settings key.
func Keys() []string {
	return []string{
		KeyProject, KeyBinary, KeyThreshold, KeyTop, KeyInclude, KeyExclude,
		KeySkipLocals, KeySkipSignatures, KeyOverwriteConfirmed, KeyLogLevel, KeyLogFormat,
	}
}

// Config holds validated settings for extraction, matching and the project store.
type Config struct {
	Project            string   `mapstructure:"project" validate:"required"`
	Binary             string   `mapstructure:"binary"`
	Threshold          int      `mapstructure:"threshold" validate:"gte=0,lte=100"`
	Top                int      `mapstructure:"top" validate:"gte=0,lte=1000"`
	Include            []string `mapstructure:"include" validate:"dive,pattern"`
	Exclude            []string `mapstructure:"exclude" validate:"dive,pattern"`
	SkipLocals         bool     `mapstructure:"skip_locals"`
	SkipSignatures     bool     `mapstructure:"skip_signatures"`
	OverwriteConfirmed bool     `mapstructure:"overwrite_confirmed"`
	LogLevel           string   `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogFormat          string   `mapstructure:"log_format" validate:"omitempty,oneof=console json auto"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("pattern", validatePattern)
}

// validatePattern checks that a filter expression compiles.
func validatePattern(fl validator.FieldLevel) bool {
	_, err := pattern.New(pattern.Auto, fl.Field().String())
	return err == nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProject, constants.DefaultProjectDir)
	v.SetDefault(KeyThreshold, constants.DefaultThreshold)
	v.SetDefault(KeyTop, constants.DefaultTopCandidates)
	v.SetDefault(KeyLogFormat, "auto")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Project:   constants.DefaultProjectDir,
		Threshold: constants.DefaultThreshold,
		Top:       constants.DefaultTopCandidates,
		LogFormat: "auto",
	}
}

// Load reads and validates settings from v. Defaults are applied first.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "cannot decode settings", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewValidationError(strings.ToLower(fe.Field()), fe.Value(), "failed "+fe.Tag()+" constraint")
		}
		return errors.WrapValidation("config", err)
	}
	return nil
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(v *viper.Viper, key string) string {
	osValue := os.Getenv(key)
	viperValue := v.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}
