package serial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("stopbits", func(fl validator.FieldLevel) bool {
		switch fl.Field().Float() {
		case 0, 1, 1.5, 2:
			return true
		}
		return false
	})
	return v
}

// ValidateConfig validates serial port configuration parameters
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("serial config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid serial config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid serial config: %w", err)
	}
	return nil
}

var fieldLabels = map[string]string{
	"PortName":    "port name",
	"BaudRate":    "baud rate",
	"DataBits":    "data bits",
	"Parity":      "parity",
	"StopBits":    "stop bits",
	"ReadTimeout": "read timeout",
}

func describe(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", label)
	case "oneof":
		return fmt.Sprintf("invalid %s %v, must be one of: %s", label, fe.Value(), fe.Param())
	case "stopbits":
		return fmt.Sprintf("stop bits must be 0, 1, 1.5, or 2, got: %v", fe.Value())
	case "min", "max":
		if fe.Field() == "DataBits" {
			return fmt.Sprintf("data bits must be 5-8, got: %v", fe.Value())
		}
		return fmt.Sprintf("%s cannot be negative: %v", label, fe.Value())
	}
	return fmt.Sprintf("%s failed %q check", label, fe.Tag())
}

// validateConfig applies defaults then validates.
func validateConfig(cfg Config) (Config, error) {
	cfg = cfg.withDefaults()
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
