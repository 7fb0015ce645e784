// Package config loads pgcledger.yaml and applies PGCLEDGER_* environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/simonvc/pgcledger/internal/assistant"
	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/tax"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PGCLEDGER"

type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Company   CompanyConfig       `yaml:"company"`
	Taxes     TaxConfig           `yaml:"taxes"`
	Accounts  classify.AccountMap `yaml:"accounts"`
	Payroll   PayrollConfig       `yaml:"payroll"`
	Assistant assistant.Config    `yaml:"assistant"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr" envconfig:"ADDR"`
	DB        string `yaml:"db" envconfig:"DB"`
	URL       string `yaml:"url" envconfig:"URL"` // used by the CLI client
	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

type CompanyConfig struct {
	Name     string `yaml:"name" json:"name" envconfig:"NAME"`
	NIF      string `yaml:"nif" json:"nif" envconfig:"NIF"`
	Currency string `yaml:"currency" json:"currency" envconfig:"CURRENCY"`
}

// TaxConfig holds the rates in percent and the IRT table.
type TaxConfig struct {
	INSSRate         decimal.Decimal `yaml:"inss_rate" envconfig:"INSS_RATE"`
	EmployerINSSRate decimal.Decimal `yaml:"employer_inss_rate" envconfig:"EMPLOYER_INSS_RATE"`
	VATRate          decimal.Decimal `yaml:"vat_rate" envconfig:"VAT_RATE"`
	IRTBrackets      []tax.Bracket   `yaml:"irt_brackets" ignored:"true"`
}

type PayrollConfig struct {
	SplitWithholdings bool `yaml:"split_withholdings" json:"split_withholdings" envconfig:"SPLIT_WITHHOLDINGS"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	calc := tax.Default()
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			DB:        "pgcledger.db",
			URL:       "http://localhost:8080",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Company: CompanyConfig{
			Currency: "AOA",
		},
		Taxes: TaxConfig{
			INSSRate:         calc.INSSRate,
			EmployerINSSRate: calc.EmployerINSSRate,
			VATRate:          decimal.NewFromInt(14),
			IRTBrackets:      calc.Brackets,
		},
		Accounts: classify.DefaultAccountMap(),
		Payroll:  PayrollConfig{SplitWithholdings: true},
	}
}

// Load reads the YAML file at path over the defaults, then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.Calculator(); err != nil {
		return fmt.Errorf("taxes: %w", err)
	}
	if c.Taxes.VATRate.IsNegative() {
		return fmt.Errorf("taxes: vat_rate cannot be negative")
	}
	if err := c.Accounts.Validate(nil); err != nil {
		return fmt.Errorf("accounts: %w", err)
	}
	return nil
}

// Calculator builds the withholding calculator from the tax section.
func (c *Config) Calculator() (*tax.Calculator, error) {
	return tax.New(c.Taxes.INSSRate, c.Taxes.EmployerINSSRate, c.Taxes.IRTBrackets)
}

// Rules builds the classification rules.
func (c *Config) Rules() classify.Rules {
	return classify.Rules{Accounts: c.Accounts, SplitWithholdings: c.Payroll.SplitWithholdings}
}
