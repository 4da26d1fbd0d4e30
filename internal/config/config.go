package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-rules/pkg/core/catalog"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/rules"
	"github.com/jakechorley/shift-rules/pkg/notify"
	"github.com/jakechorley/shift-rules/pkg/specialevents"
	"github.com/jakechorley/shift-rules/pkg/utils/validation"
)

// Environment variables override secrets and connection strings from the file
const envPrefix = "SHIFT_RULES_"

// Roster sources
const (
	RosterSheets   = "sheets"
	RosterDatabase = "database"
	RosterInline   = "config"
)

// Database drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Mail transports
const (
	MailGmail = "gmail"
	MailSMTP  = "smtp"
)

// EmployeeConfig is a roster entry defined directly in the config file
type EmployeeConfig struct {
	ID         string  `yaml:"id" validate:"required"`
	Name       string  `yaml:"name"`
	StoreID    string  `yaml:"store"`
	Skill      string  `yaml:"skill,omitempty"`
	Preference float64 `yaml:"preference,omitempty" validate:"gte=-1,lte=1"`
	Email      string  `yaml:"email,omitempty" validate:"omitempty,email"`
	Status     string  `yaml:"status,omitempty"`
}

// RosterConfig selects where the employee roster comes from
type RosterConfig struct {
	Source       string           `yaml:"source" validate:"required,oneof=sheets database config"`
	SheetID      string           `yaml:"sheetID" validate:"required_if=Source sheets"`
	EmployeesTab string           `yaml:"employeesTab" validate:"required_if=Source sheets"`
	Employees    []EmployeeConfig `yaml:"employees,omitempty" validate:"dive"`
}

// DatabaseConfig selects the schedule store. The memory driver keeps nothing between runs.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=memory postgres sqlite"`
	// Postgres connection string or sqlite file path
	DSN string `yaml:"dsn" validate:"required_unless=Driver memory"`
}

// RedisConfig enables the cross-process employee lock when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db,omitempty" validate:"gte=0"`
}

// AMQPConfig enables event publishing to a queue when URL is set
type AMQPConfig struct {
	URL   string `yaml:"url,omitempty" validate:"omitempty,url"`
	Queue string `yaml:"queue,omitempty" validate:"required_with=URL"`
}

// MailConfig enables e-mail notifications when Transport is set
type MailConfig struct {
	Transport   string             `yaml:"transport,omitempty" validate:"omitempty,oneof=gmail smtp"`
	Recipients  []string           `yaml:"recipients,omitempty" validate:"required_with=Transport,dive,email"`
	GmailSender string             `yaml:"gmailSender,omitempty"`
	SMTP        *notify.SMTPConfig `yaml:"smtp,omitempty" validate:"required_if=Transport smtp,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Catalog       catalog.Catalog     `yaml:"catalog"`
	FairnessScope rules.FairnessScope `yaml:"fairnessScope" validate:"oneof=company store"`
	LockTimeout   time.Duration       `yaml:"lockTimeout" validate:"gt=0"`

	Roster   RosterConfig   `yaml:"roster"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	Mail     MailConfig     `yaml:"mail"`

	Holidays  []specialevents.Holiday  `yaml:"holidays,omitempty" validate:"dive"`
	Trainings []specialevents.Training `yaml:"trainings,omitempty" validate:"dive"`
}

// envOverrides are read from SHIFT_RULES_* variables
type envOverrides struct {
	DatabaseDSN   string `env:"DATABASE_DSN"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	AMQPURL       string `env:"AMQP_URL"`
}

var validate = validation.Must()

// Default returns the configuration every file is layered on top of
func Default() *Config {
	return &Config{
		Catalog:       *catalog.Default(),
		FairnessScope: rules.ScopeCompany,
		LockTimeout:   10 * time.Second,
		Roster:        RosterConfig{Source: RosterInline},
		Database:      DatabaseConfig{Driver: DriverMemory},
	}
}

// Load loads and validates shift_rules_config.yaml.
// It looks in the current directory first, then in the user's home directory.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the config for an environment, e.g. env="test" reads
// shift_rules_config.test.yaml
func LoadWithEnv(envName string) (*Config, error) {
	configPath, err := findConfigFile(envName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path,
// applying SHIFT_RULES_* environment overrides
func LoadFromPath(path string) (*Config, error) {
	return loadFromPath(path, nil)
}

// loadFromPath reads overrides from environ, or from the process environment when environ is nil
func loadFromPath(path string, environ map[string]string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnv(cfg, environ); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: envPrefix}
	if environ != nil {
		opts.Environment = environ
	}

	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			err = aggErr.Errors[0]
		}
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if overrides.DatabaseDSN != "" {
		cfg.Database.DSN = overrides.DatabaseDSN
	}
	if overrides.RedisPassword != "" {
		cfg.Redis.Password = overrides.RedisPassword
	}
	if overrides.AMQPURL != "" {
		cfg.AMQP.URL = overrides.AMQPURL
	}
	if overrides.SMTPPassword != "" && cfg.Mail.SMTP != nil {
		cfg.Mail.SMTP.Password = overrides.SMTPPassword
	}
	return nil
}

// Validate validates the configuration struct, the rule catalog and rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Catalog.Check(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	for i, holiday := range cfg.Holidays {
		if err := checkRRule(holiday.RRule); err != nil {
			return fmt.Errorf("invalid rrule in holidays[%d]: %w", i, err)
		}
	}
	for i, training := range cfg.Trainings {
		if err := checkRRule(training.RRule); err != nil {
			return fmt.Errorf("invalid rrule in trainings[%d]: %w", i, err)
		}
	}

	if cfg.Roster.Source == RosterDatabase && cfg.Database.Driver == DriverMemory {
		return fmt.Errorf("config validation failed: roster source %q needs a persistent database driver", RosterDatabase)
	}

	return nil
}

// InlineEmployees converts the roster entries defined in the file
func (c *Config) InlineEmployees() []model.Employee {
	employees := make([]model.Employee, 0, len(c.Roster.Employees))
	for _, e := range c.Roster.Employees {
		employees = append(employees, model.Employee{
			ID:         e.ID,
			Name:       e.Name,
			StoreID:    e.StoreID,
			Skill:      e.Skill,
			Preference: e.Preference,
			Email:      e.Email,
			Status:     e.Status,
		})
	}
	return employees
}

// Calendar builds the holiday and training calendar
func (c *Config) Calendar() (*specialevents.Calendar, error) {
	return specialevents.NewCalendar(c.Holidays, c.Trainings)
}

func checkRRule(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := rrule.StrToROption(rule)
	return err
}

// findConfigFile returns shift_rules_config.yaml, or shift_rules_config.<env>.yaml
func findConfigFile(envName string) (string, error) {
	if envName != "" {
		return findFile("shift_rules_config." + envName + ".yaml")
	}
	return findFile("shift_rules_config.yaml")
}

// findFile looks for name in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
