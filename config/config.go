// Package config loads the YAML application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Station-Manager/cs1000/logging"
	"github.com/Station-Manager/cs1000/serial"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Output formats for measurement results.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type Config struct {
	Device  serial.Config  `yaml:"device"`
	Log     logging.Config `yaml:"log"`
	Metrics Metrics        `yaml:"metrics"`
	Output  Output         `yaml:"output"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen" validate:"required_if=Enabled true"`
}

type Output struct {
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns a configuration usable with only a port name filled in.
func Default() Config {
	return Config{
		Device: serial.Config{
			BaudRate:    serial.DefaultBaudRate.Int(),
			DataBits:    serial.DataBits8.Int(),
			Parity:      "N",
			StopBits:    1,
			ReadTimeout: 5 * time.Second,
		},
		Log:     logging.Default(),
		Metrics: Metrics{Listen: "127.0.0.1:9108"},
		Output:  Output{Format: FormatJSON},
	}
}

// Load reads path over Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section. Device errors come from serial.ValidateConfig
// so they read the same as errors from serial.Open.
func (c *Config) Validate() error {
	var errs []error
	dev := c.Device.WithDefaults()
	if err := serial.ValidateConfig(&dev); err != nil {
		errs = append(errs, err)
	}
	if err := validate.Struct(c.Log); err != nil {
		errs = append(errs, fmt.Errorf("invalid log config: %w", err))
	}
	if err := validate.Struct(c.Metrics); err != nil {
		errs = append(errs, fmt.Errorf("invalid metrics config: %w", err))
	}
	if err := validate.Struct(c.Output); err != nil {
		errs = append(errs, fmt.Errorf("invalid output config: %w", err))
	}
	return errors.Join(errs...)
}
