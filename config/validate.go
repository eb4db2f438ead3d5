package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateBackendTemplate, Config{})
	return v
}

// validateBackendTemplate rejects the llama3 chat template on the anthropic
// backend.
func validateBackendTemplate(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Backend == llm.BackendAnthropic && c.ChatTemplate == prompt.TemplateLlama3 {
		sl.ReportError(c.ChatTemplate, "chat_template", "ChatTemplate", "backend_template", c.Backend)
	}
}

// Validate reports every field that is out of range, by its JSON key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "backend_template":
		return fmt.Sprintf("%s %s cannot be used with the %s backend", field, prompt.TemplateLlama3, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
