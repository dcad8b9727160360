package config

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cperrin88/cavern/pkg/errors"
	"github.com/cperrin88/cavern/pkg/platform"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("platform_os", func(fl validator.FieldLevel) bool {
			return platform.IsValidOS(fl.Field().String())
		})
		_ = validate.RegisterValidation("platform_arch", func(fl validator.FieldLevel) bool {
			return platform.IsValidArch(fl.Field().String())
		})
	})
	return validate
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return fieldError(fieldErrs[0])
}

// fieldError maps a validation failure onto the matching sentinel.
func fieldError(fe validator.FieldError) error {
	value := fmt.Sprint(fe.Value())
	switch fe.StructNamespace() {
	case "Config.Settings.LogLevel":
		return errors.ErrInvalidLogLevelWithDetails(value)
	case "Config.Settings.OutputFormat":
		return errors.ErrInvalidOutputWithDetails(value)
	case "Config.Settings.StoreBackend":
		return fmt.Errorf("%w: '%s', must be one of: bolt, json, sqlite", errors.ErrInvalidBackend, value)
	case "Config.Settings.Platform.OS":
		return errors.ErrInvalidOSValueWithDetails(value, platform.ValidOS())
	case "Config.Settings.Platform.Arch":
		return errors.ErrInvalidArchValueWithDetails(value, platform.ValidArch())
	}
	if fe.Param() != "" {
		return fmt.Errorf("%w: %s failed %s=%s (got %s)", errors.ErrConfigValidation, fe.Namespace(), fe.Tag(), fe.Param(), value)
	}
	return fmt.Errorf("%w: %s failed %s (got %q)", errors.ErrConfigValidation, fe.Namespace(), fe.Tag(), value)
}
