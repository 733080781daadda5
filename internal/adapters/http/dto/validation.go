package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks a request body that decoded but broke a rule.
	ErrValidation = errors.New("validation failed")

	// ErrBinding marks a request body that could not be decoded.
	ErrBinding = errors.New("binding failed")
)

var (
	rules     *validator.Validate
	rulesOnce sync.Once
)

// ruleset returns the shared validator. Field names in errors are the JSON
// names clients sent, and map keys carry a trimmed "notempty" check.
func ruleset() *validator.Validate {
	rulesOnce.Do(func() {
		rules = validator.New(validator.WithRequiredStructEnabled())

		rules.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = rules.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})

	return rules
}

// Validatable is implemented by requests with rules the tags cannot express,
// such as reserved scope keys.
type Validatable interface {
	Validate() error
}

// Validate checks v's struct tags.
func Validate(v any) error {
	if err := ruleset().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// ValidateAll checks struct tags, then v's own Validate when it has one.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	if rv, ok := v.(Validatable); ok {
		if err := rv.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// Bind decodes the JSON body into v and runs ValidateAll on it.
func Bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return ValidateAll(v)
}

// RespondBindError writes the 400 for an error returned by Bind. Tag
// failures list every offending field; rule failures from Validate go
// through the domain error mapping.
func RespondBindError(c *gin.Context, traceID string, err error) {
	switch {
	case errors.Is(err, ErrBinding):
		RespondWithErrorCode(c, traceID, ErrorCodeBadRequest, "malformed request body")
	case IsValidationError(err):
		RespondWithValidationErrors(c, traceID, ValidationErrors(err))
	default:
		HandleError(c, traceID, err)
	}
}

// ValidationErrors maps each failing field to a client-facing message.
func ValidationErrors(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
	}

	return fields
}

// IsValidationError reports whether err carries struct tag failures.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// fieldPath drops the request type from the namespace, so a bad key inside
// MergeRequest.values[ ] reads "values[ ]".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}

	return path
}

func fieldMessage(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notempty":
		return "must not be blank"
	case "min", "max":
		return sizeMessage(fe.Tag(), param, fe.Kind())
	case "oneof":
		return "must be one of: " + param
	default:
		return "failed validation: " + fe.Tag()
	}
}

// sizeMessage words min/max by what they count: characters, keys or value.
func sizeMessage(tag, param string, kind reflect.Kind) string {
	bound := "at least"
	if tag == "max" {
		bound = "at most"
	}

	switch kind {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, param)
	case reflect.Map, reflect.Slice:
		return fmt.Sprintf("must hold %s %s keys", bound, param)
	default:
		return fmt.Sprintf("must be %s %s", bound, param)
	}
}
