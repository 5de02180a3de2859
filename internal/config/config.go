package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. FCASCHOOLS_DATA_WORKBOOK.
const EnvPrefix = "FCASCHOOLS"

// DotEnvFile is loaded into the environment before configuration is read,
// when it exists.
const DotEnvFile = ".env"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig        `mapstructure:"data"`
	Web       WebConfig         `mapstructure:"web"`
	Logging   LoggingConfig     `mapstructure:"logging"`
	Catalogue []catalogue.Level `mapstructure:"catalogue"`

	cat *catalogue.Catalogue
}

// DataConfig locates the source workbook
type DataConfig struct {
	Workbook        string `mapstructure:"workbook"`
	EnrolmentSheet  string `mapstructure:"enrolment_sheet"`
	AttendanceSheet string `mapstructure:"attendance_sheet"`
}

// WebConfig holds dashboard server configuration
type WebConfig struct {
	Port string `mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the file at path and from environment
// variables. An empty path uses defaults and the environment only. The
// result is validated.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		logger.Debug("config: loaded %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.workbook", "")
	v.SetDefault("data.enrolment_sheet", "Enrolment Data")
	v.SetDefault("data.attendance_sheet", "Attendance Report")

	v.SetDefault("web.port", "8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid and builds the
// school catalogue. An empty catalogue section selects the built-in lists.
func (c *Config) Validate() error {
	if c.Data.EnrolmentSheet == "" || c.Data.AttendanceSheet == "" {
		return errors.Wrap(catalogue.ErrConfig, "data.enrolment_sheet and data.attendance_sheet are required")
	}
	if c.Data.EnrolmentSheet == c.Data.AttendanceSheet {
		return errors.Wrapf(catalogue.ErrConfig, "enrolment and attendance sheets are both %q", c.Data.EnrolmentSheet)
	}
	if port, err := strconv.Atoi(c.Web.Port); err != nil || port < 1 || port > 65535 {
		return errors.Wrapf(catalogue.ErrConfig, "web.port must be a port number, got %q", c.Web.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(catalogue.ErrConfig, "logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return errors.Wrapf(catalogue.ErrConfig, "logging.format must be json or text, got %q", c.Logging.Format)
	}

	if len(c.Catalogue) == 0 {
		c.cat = catalogue.Default()
		return nil
	}
	cat, err := catalogue.New(c.Catalogue)
	if err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return err
	}
	c.cat = cat
	return nil
}

// SchoolCatalogue returns the validated school catalogue.
func (c *Config) SchoolCatalogue() *catalogue.Catalogue {
	if c.cat == nil {
		return catalogue.Default()
	}
	return c.cat
}
