package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report TOML key names so messages match what users edit.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return formatFieldError(fieldErrs[0])
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Upload.DeleteLocal && !c.Upload.Enabled {
		return errors.New("upload.delete_local has no effect unless upload.enabled is true")
	}
	return nil
}

func formatFieldError(e validator.FieldError) error {
	key := e.Namespace()
	if idx := strings.Index(key, "."); idx >= 0 {
		key = key[idx+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s must be set", key)
	case "required_if":
		return fmt.Errorf("%s is required when upload is enabled", key)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s (got %q)", key, e.Param(), e.Value())
	case "url":
		return fmt.Errorf("%s must be a valid URL", key)
	case "gte":
		return fmt.Errorf("%s must be at least %s", key, e.Param())
	case "lte":
		return fmt.Errorf("%s must be at most %s", key, e.Param())
	default:
		return fmt.Errorf("%s failed validation '%s'", key, e.Tag())
	}
}
