package config

import (
	"fmt"

	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/session"
	"github.com/kbukum/pokitdok/validation"
)

// DefaultName is the service name used when none is configured.
const DefaultName = "pokitdok"

// Config is the full SDK configuration.
type Config struct {
	Name          string               `yaml:"name" mapstructure:"name"`
	Environment   string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	PokitDok      session.Config       `yaml:"pokitdok" mapstructure:"pokitdok"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields of every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Logging.ApplyDefaults()
	c.PokitDok.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig(fmt.Sprintf("logging: %v", err)).WithCause(err)
	}
	return validation.Validate(c)
}
