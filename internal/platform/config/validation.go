package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// rules names fields by their koanf keys, so errors read as the settings an
// operator edits (scope.request_timeout, not Scope.RequestTimeout).
var rules = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})

	return v
}()

// Validate checks per-field rules and the rules that span sections. Every
// problem is reported in one error; the service must not start on any.
func (c *Config) Validate() error {
	var problems []string

	if err := rules.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation: %w", err)
		}

		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	problems = append(problems, c.scopeProblems()...)

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

// scopeProblems checks the scope section against itself and the server.
// Log keys name slot entries, so blanks and repeats are mistakes. The request
// timeout has to fire before the server's write deadline cuts the response.
func (c *Config) scopeProblems() []string {
	var problems []string

	seen := make(map[string]struct{}, len(c.Scope.LogKeys))
	for i, key := range c.Scope.LogKeys {
		if strings.TrimSpace(key) == "" {
			problems = append(problems, fmt.Sprintf("scope.log_keys[%d] must not be blank", i))
			continue
		}

		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("scope.log_keys[%d] repeats %q", i, key))
		}

		seen[key] = struct{}{}
	}

	if c.Scope.RequestTimeout > 0 && c.Server.WriteTimeout > 0 && c.Scope.RequestTimeout >= c.Server.WriteTimeout {
		problems = append(problems, fmt.Sprintf(
			"scope.request_timeout (%s) must be shorter than server.write_timeout (%s)",
			c.Scope.RequestTimeout, c.Server.WriteTimeout,
		))
	}

	return problems
}

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}

// configKey drops the root type from a validator namespace:
// "Config.scope.log_keys" becomes "scope.log_keys".
func configKey(namespace string) string {
	_, key, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}

	return key
}
