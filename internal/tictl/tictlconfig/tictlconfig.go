// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlconfig provides configuration parsing and validation for tictl.
//
// Configuration is stored at tictl.yaml within the tictl directory (--dir).
package tictlconfig

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bufdev/tictl/internal/pkg/tinvest"
	"github.com/bufdev/tictl/internal/tictl/tictlinstruments"
	"github.com/bufdev/tictl/internal/tictl/tictlpath"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlreport"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultServeAddress is the default listen address of "tictl serve".
	DefaultServeAddress = "127.0.0.1:8080"
	// DefaultTimeout is the default timeout of a single API request.
	DefaultTimeout = 30 * time.Second
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# T-Invest API configuration.
#
# The API token must be set via the TINVEST_TOKEN environment variable,
# or in a .env file in this directory.
tinvest:
  # Base URLs tried in order until one succeeds.
  #
  # Optional. Defaults to the tbank.ru and tinkoff.ru REST gateways.
  # base_urls:
  #   - https://invest-public-api.tbank.ru/rest
  #   - https://invest-public-api.tinkoff.ru/rest
  # Pause between instrument lookups.
  #
  # Optional. Defaults to 30ms.
  request_pause: 30ms
  # Timeout of a single HTTP request.
  #
  # Optional. Defaults to 30s.
  timeout: 30s
# Report configuration.
report:
  # The field positions are aggregated by: name, ticker, or figi.
  #
  # Optional. Defaults to name. Set to "" to skip the whole-portfolio
  # aggregate sheet; category sheets are then aggregated by name.
  aggregate_by: name
  # The currency all prices and values are reported in.
  #
  # Optional. Defaults to RUB. Cash in other currencies is skipped.
  reporting_currency: RUB
  # The display name of cash rows.
  #
  # Optional.
  cash_name: Деньги (RUB)
# Instrument metadata cache configuration.
instruments:
  # How long instrument metadata is cached.
  #
  # Optional. Defaults to 6h.
  cache_ttl: 6h
# Sheet names.
#
# Optional. Each name defaults to the value shown.
# sheets:
#   positions: Positions
#   aggregated: Positions_Aggregated
#   shares: Positions_Shares
#   bonds: Positions_Bonds
#   etfs: Positions_ETFs
#   currencies: Positions_Currencies
#   futures: Positions_Futures
#   other: Positions_Other
#   money: Positions_Money
#   summary: Positions_SummaryByType
# HTTP server configuration for "tictl serve".
#
# Optional.
# serve:
#   address: 127.0.0.1:8080
#   # Cron schedule of background syncs. Empty disables them.
#   schedule: "*/15 10-23 * * 1-5"
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// TInvest holds the T-Invest API configuration.
	TInvest ExternalTInvestConfig `yaml:"tinvest"`
	// Report holds the report configuration.
	Report ExternalReportConfig `yaml:"report"`
	// Instruments holds the instrument cache configuration.
	Instruments ExternalInstrumentsConfig `yaml:"instruments"`
	// Sheets holds the sheet names.
	Sheets ExternalSheetsConfig `yaml:"sheets"`
	// Serve holds the HTTP server configuration.
	Serve ExternalServeConfig `yaml:"serve"`
}

// ExternalTInvestConfig holds T-Invest API configuration.
type ExternalTInvestConfig struct {
	BaseURLs     []string `yaml:"base_urls"`
	RequestPause string   `yaml:"request_pause"`
	Timeout      string   `yaml:"timeout"`
}

// ExternalReportConfig holds report configuration.
type ExternalReportConfig struct {
	// AggregateBy is nil when unset, which is distinct from an explicit "".
	AggregateBy       *string `yaml:"aggregate_by"`
	ReportingCurrency string  `yaml:"reporting_currency"`
	CashName          string  `yaml:"cash_name"`
}

// ExternalInstrumentsConfig holds instrument cache configuration.
type ExternalInstrumentsConfig struct {
	CacheTTL string `yaml:"cache_ttl"`
}

// ExternalSheetsConfig holds sheet names.
type ExternalSheetsConfig struct {
	Positions  string `yaml:"positions"`
	Aggregated string `yaml:"aggregated"`
	Shares     string `yaml:"shares"`
	Bonds      string `yaml:"bonds"`
	ETFs       string `yaml:"etfs"`
	Currencies string `yaml:"currencies"`
	Futures    string `yaml:"futures"`
	Other      string `yaml:"other"`
	Money      string `yaml:"money"`
	Summary    string `yaml:"summary"`
}

// ExternalServeConfig holds HTTP server configuration.
type ExternalServeConfig struct {
	Address  string `yaml:"address"`
	Schedule string `yaml:"schedule"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// DirPath is the tictl directory the config was read from.
	DirPath string
	// BaseURLs are the API base URLs in fallback order.
	BaseURLs []string
	// RequestPause is the pause between instrument lookups.
	RequestPause time.Duration
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// GroupField is the field positions are aggregated by.
	GroupField tictlposition.Field
	// PortfolioAggregate is whether the whole-portfolio aggregate is produced.
	PortfolioAggregate bool
	// ReportingCurrency is the upper-case ISO code of the reporting currency.
	ReportingCurrency string
	// CashName is the display name of cash rows.
	CashName string
	// CacheTTL is how long instrument metadata is cached.
	CacheTTL time.Duration
	// SheetNames are the destination sheet names.
	SheetNames tictlreport.SheetNames
	// ServeAddress is the listen address of "tictl serve".
	ServeAddress string
	// ServeSchedule is the cron schedule of background syncs, or empty.
	ServeSchedule string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(dirPath string, externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	config := &Config{
		DirPath:            dirPath,
		BaseURLs:           tinvest.DefaultBaseURLs,
		GroupField:         tictlposition.FieldName,
		PortfolioAggregate: true,
		ReportingCurrency:  tictlreport.DefaultCurrency,
		CashName:           tictlreport.DefaultCashName,
		ServeAddress:       DefaultServeAddress,
		ServeSchedule:      strings.TrimSpace(externalConfig.Serve.Schedule),
	}
	if len(externalConfig.TInvest.BaseURLs) > 0 {
		for _, baseURL := range externalConfig.TInvest.BaseURLs {
			if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
				return nil, fmt.Errorf("tinvest.base_urls: %q must be an http(s) URL", baseURL)
			}
		}
		config.BaseURLs = externalConfig.TInvest.BaseURLs
	}
	var err error
	if config.RequestPause, err = parseDuration("tinvest.request_pause", externalConfig.TInvest.RequestPause, tictlreport.DefaultPause, true); err != nil {
		return nil, err
	}
	if config.Timeout, err = parseDuration("tinvest.timeout", externalConfig.TInvest.Timeout, DefaultTimeout, false); err != nil {
		return nil, err
	}
	if config.CacheTTL, err = parseDuration("instruments.cache_ttl", externalConfig.Instruments.CacheTTL, tictlinstruments.DefaultTTL, false); err != nil {
		return nil, err
	}
	if aggregateBy := externalConfig.Report.AggregateBy; aggregateBy != nil {
		if *aggregateBy == "" {
			config.PortfolioAggregate = false
		} else {
			field, err := tictlposition.ParseField(*aggregateBy)
			if err != nil {
				return nil, fmt.Errorf("report.aggregate_by: %w", err)
			}
			config.GroupField = field
		}
	}
	if currency := strings.TrimSpace(externalConfig.Report.ReportingCurrency); currency != "" {
		if len(currency) != 3 {
			return nil, fmt.Errorf("report.reporting_currency: %q is not an ISO currency code", currency)
		}
		config.ReportingCurrency = strings.ToUpper(currency)
	}
	if externalConfig.Report.CashName != "" {
		config.CashName = externalConfig.Report.CashName
	}
	if externalConfig.Serve.Address != "" {
		config.ServeAddress = externalConfig.Serve.Address
	}
	if config.ServeSchedule != "" {
		if _, err := cron.ParseStandard(config.ServeSchedule); err != nil {
			return nil, fmt.Errorf("serve.schedule: %w", err)
		}
	}
	if config.SheetNames, err = newSheetNames(externalConfig.Sheets); err != nil {
		return nil, err
	}
	return config, nil
}

// ReadConfig reads and validates the configuration file from the given directory.
// Returns a clear error message directing users to run "tictl config init" if the file is missing.
func ReadConfig(dirPath string) (*Config, error) {
	filePath := tictlpath.ConfigFilePath(dirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"tictl config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return NewConfig(dirPath, externalConfig)
}

// InitConfig creates a new configuration file with a documented template.
// Creates the directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(dirPath string) (string, error) {
	filePath := tictlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given directory.
func ValidateConfig(dirPath string) error {
	_, err := ReadConfig(dirPath)
	return err
}

// *** PRIVATE ***

func parseDuration(name string, value string, defaultValue time.Duration, allowZero bool) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if duration < 0 || (duration == 0 && !allowZero) {
		return 0, fmt.Errorf("%s: %s must be positive", name, value)
	}
	return duration, nil
}

func newSheetNames(externalSheetsConfig ExternalSheetsConfig) (tictlreport.SheetNames, error) {
	sheetNames := tictlreport.DefaultSheetNames()
	if externalSheetsConfig.Positions != "" {
		sheetNames.Positions = externalSheetsConfig.Positions
	}
	if externalSheetsConfig.Aggregated != "" {
		sheetNames.Aggregated = externalSheetsConfig.Aggregated
	}
	if externalSheetsConfig.Summary != "" {
		sheetNames.Summary = externalSheetsConfig.Summary
	}
	for category, name := range map[tictlposition.Category]string{
		tictlposition.CategoryShares:     externalSheetsConfig.Shares,
		tictlposition.CategoryBonds:      externalSheetsConfig.Bonds,
		tictlposition.CategoryETFs:       externalSheetsConfig.ETFs,
		tictlposition.CategoryCurrencies: externalSheetsConfig.Currencies,
		tictlposition.CategoryFutures:    externalSheetsConfig.Futures,
		tictlposition.CategoryOther:      externalSheetsConfig.Other,
		tictlposition.CategoryMoney:      externalSheetsConfig.Money,
	} {
		if name != "" {
			sheetNames.Categories[category] = name
		}
	}
	names := []string{sheetNames.Positions, sheetNames.Aggregated, sheetNames.Summary}
	for _, category := range tictlposition.AllCategories {
		names = append(names, sheetNames.Categories[category])
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return tictlreport.SheetNames{}, fmt.Errorf("sheets: duplicate sheet name %q", name)
		}
		// Names double as CSV file names.
		if strings.ContainsAny(name, `/\`) {
			return tictlreport.SheetNames{}, fmt.Errorf("sheets: %q must not contain path separators", name)
		}
		seen[name] = struct{}{}
	}
	return sheetNames, nil
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
