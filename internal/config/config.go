// Package config manages keepstyle configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajack/keepstyle"
)

// Config represents the application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Report  ReportConfig  `yaml:"report"`
	Restore RestoreConfig `yaml:"restore"`
	Verify  VerifyConfig  `yaml:"verify"`
}

// ReportConfig controls end-of-day report generation.
type ReportConfig struct {
	Template       string                `yaml:"template"`
	OutputDir      string                `yaml:"output_dir" validate:"required"`
	DefaultProduct string                `yaml:"default_product" validate:"required"`
	BulletStyle    string                `yaml:"bullet_style" validate:"required"`
	Formats        keepstyle.LineFormats `yaml:"formats"`
	Header         keepstyle.HeaderToken `yaml:"header"`
}

// RestoreConfig controls workbook formatting restoration.
type RestoreConfig struct {
	TempSuffix         string `yaml:"temp_suffix" validate:"required,excludesall=/\\"`
	ConditionalFormats bool   `yaml:"conditional_formats"`
}

// VerifyConfig controls how much of each sheet the verifier samples.
type VerifyConfig struct {
	SampleRows      int `yaml:"sample_rows" validate:"min=1"`
	SampleCols      int `yaml:"sample_cols" validate:"min=1"`
	RowHeightSample int `yaml:"row_height_sample" validate:"min=0"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
			FileLogger:    LoggerConfig{Level: "none", Mode: "append"},
		},
		Report: ReportConfig{
			Template:       "",
			OutputDir:      ".",
			DefaultProduct: "Hello Britannica",
			BulletStyle:    "List Bullet",
			Formats:        keepstyle.DefaultLineFormats(),
			Header:         keepstyle.DefaultHeaderToken(),
		},
		Restore: RestoreConfig{
			TempSuffix:         "_TEMP",
			ConditionalFormats: true,
		},
		Verify: VerifyConfig{
			SampleRows:      3,
			SampleCols:      5,
			RowHeightSample: 10,
		},
	}
}

// Validate checks field constraints and the syntax of the line formats.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate configuration: %w", err)
		}
		items := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			items = append(items, fmt.Sprintf("%s (%s)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
		}
		return &keepstyle.ValidationError{Subject: "configuration", Reason: "invalid fields", Items: items}
	}
	if c.Logging.FileLogger.Level != "none" && c.Logging.FileLogger.Destination == "" {
		return &keepstyle.ValidationError{Subject: "configuration", Reason: "invalid fields", Items: []string{"Logging.FileLogger.Destination (required)"}}
	}
	if err := keepstyle.ValidateLineFormats(c.Report.Formats); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	return nil
}

// ReportOptions returns the library options for report generation.
func (c *Config) ReportOptions() []keepstyle.Option {
	return []keepstyle.Option{
		keepstyle.WithOutputDir(c.Report.OutputDir),
		keepstyle.WithDefaultProduct(c.Report.DefaultProduct),
		keepstyle.WithBulletStyle(c.Report.BulletStyle),
		keepstyle.WithLineFormats(c.Report.Formats),
		keepstyle.WithHeaderToken(c.Report.Header),
	}
}

// RestoreOptions returns the library options for restoring formatting.
func (c *Config) RestoreOptions() []keepstyle.Option {
	return []keepstyle.Option{
		keepstyle.WithTempSuffix(c.Restore.TempSuffix),
		keepstyle.WithConditionalFormats(c.Restore.ConditionalFormats),
	}
}

// VerifyOptions returns the library options for verification.
func (c *Config) VerifyOptions() []keepstyle.Option {
	return []keepstyle.Option{
		keepstyle.WithStyleSample(c.Verify.SampleRows, c.Verify.SampleCols),
		keepstyle.WithRowHeightSample(c.Verify.RowHeightSample),
	}
}
