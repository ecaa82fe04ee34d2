package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// fieldEnvNames maps struct namespaces back to the environment variable
// an operator has to fix.
var fieldEnvNames = map[string]string{
	"Config.ActiveSite":      "ACTIVE_SITE",
	"Config.Oracle.Username": "ORACLE_USERNAME",
	"Config.Oracle.Password": "ORACLE_PASSWORD",
	"Config.Oracle.Port":     "ORACLE_PORT",
	"Config.Pool.MaxSize":    "DB_POOL_MAX_SIZE",
	"Config.Logging.Level":   "LOG_LEVEL",
	"Config.Logging.Format":  "LOG_FORMAT",
	"Config.Logging.Output":  "LOG_OUTPUT",
}

// ValidateConfig checks the merged configuration before any I/O,
// naming the offending environment key in the failure.
func ValidateConfig(cfg *Config) error {
	v := validator.New()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return shared.NewConfigError("configuration validation failed", err)
	}
	var messages []string
	for _, e := range validationErrs {
		name := fieldEnvNames[e.StructNamespace()]
		if name == "" {
			name = e.StructNamespace()
		}
		if e.Tag() == "required" {
			messages = append(messages, name+" is required but not set")
		} else {
			messages = append(messages, fmt.Sprintf("%s has invalid value %q (%s)", name, fmt.Sprint(e.Value()), e.Tag()))
		}
	}
	return shared.NewConfigError("invalid configuration: "+strings.Join(messages, "; "), nil)
}
