// Package config holds the static thresholds and rules a pipeline run is
// configured with. A Config is loaded once (defaults, then environment, then
// an optional YAML file) and is immutable for the duration of a run.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const dateLayout = "2006-01-02"

// Config is the complete pipeline configuration.
type Config struct {
	BusinessRules BusinessRules     `yaml:"business_rules" envconfig:"BUSINESS_RULES"`
	Quality       QualityThresholds `yaml:"quality_thresholds" envconfig:"QUALITY_THRESHOLDS"`
	Columns       ColumnKeywords    `yaml:"columns" envconfig:"COLUMNS"`
}

// BusinessRules configures the rule engine.
type BusinessRules struct {
	MinOrderQty    float64  `yaml:"min_order_qty" envconfig:"MIN_ORDER_QTY" default:"1"`
	ValidDateStart string   `yaml:"valid_date_start" envconfig:"VALID_DATE_START" default:"2020-01-01" validate:"datetime=2006-01-02"`
	ValidDateEnd   string   `yaml:"valid_date_end" envconfig:"VALID_DATE_END" default:"2025-12-31" validate:"datetime=2006-01-02"`
	RequiredFields []string `yaml:"required_fields" envconfig:"REQUIRED_FIELDS" default:"ID,ItemName产品名称,QTY数量"`
}

// QualityThresholds are the pass marks the quality report is flagged against.
type QualityThresholds struct {
	Completeness float64 `yaml:"completeness" envconfig:"COMPLETENESS" default:"0.8" validate:"gte=0,lte=1"`
	Validity     float64 `yaml:"validity" envconfig:"VALIDITY" default:"0.9" validate:"gte=0,lte=1"`
	Consistency  float64 `yaml:"consistency" envconfig:"CONSISTENCY" default:"0.95" validate:"gte=0,lte=1"`
}

// ColumnKeywords drive name-pattern column classification. Quantity keywords
// match case-sensitively, date keywords match against the lowercased name.
type ColumnKeywords struct {
	Quantity []string `yaml:"quantity" envconfig:"QUANTITY" default:"QTY,数量" validate:"min=1"`
	Date     []string `yaml:"date" envconfig:"DATE" default:"date,日期,orderdate,reportmonth" validate:"min=1"`
}

// Load builds a Config from defaults and SALESETL_* environment variables,
// then merges an optional YAML file, then validates.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("SALESETL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := cfg.mergeFile(configFile); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration, panicking only if the compiled
// defaults are themselves invalid.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks field constraints and the date window ordering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	start, end, err := c.DateWindow()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("valid date range %s..%s is inverted",
			c.BusinessRules.ValidDateStart, c.BusinessRules.ValidDateEnd)
	}
	return nil
}

// DateWindow returns the parsed valid date range bounds.
func (c *Config) DateWindow() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.BusinessRules.ValidDateStart)
	if err != nil {
		return start, end, fmt.Errorf("invalid valid_date_start: %w", err)
	}
	end, err = time.Parse(dateLayout, c.BusinessRules.ValidDateEnd)
	if err != nil {
		return start, end, fmt.Errorf("invalid valid_date_end: %w", err)
	}
	return start, end, nil
}
