package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Screener struct {
		BaseURL               string `yaml:"base_url"`
		UserAgent             string `yaml:"user_agent"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		PacingMs              int    `yaml:"pacing_ms"`
		BackfillPacingMs      int    `yaml:"backfill_pacing_ms"`
		OverallTimeoutSeconds int    `yaml:"overall_timeout_seconds"`
		Retry                 struct {
			MaxAttempts   int `yaml:"max_attempts"`
			InitialWaitMs int `yaml:"initial_wait_ms"`
			MaxWaitMs     int `yaml:"max_wait_ms"`
		} `yaml:"retry"`
	} `yaml:"screener"`
	Secondary struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Suffix  string `yaml:"suffix"`
	} `yaml:"secondary"`
	Kite struct {
		Enabled        bool   `yaml:"enabled"`
		APIKeyEnv      string `yaml:"api_key_env"`
		AccessTokenEnv string `yaml:"access_token_env"`
		Exchange       string `yaml:"exchange"`
	} `yaml:"kite"`
	Cache struct {
		Dir               string `yaml:"dir"`
		TTLHours          int    `yaml:"ttl_hours"`
		ResultsTTLMinutes int    `yaml:"results_ttl_minutes"`
	} `yaml:"cache"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Universe struct {
		Static    []string `yaml:"static"`
		ScanLimit int      `yaml:"scan_limit"`
	} `yaml:"universe"`
	Criteria struct {
		MaxPEG                   float64 `yaml:"max_peg"`
		MinPE                    float64 `yaml:"min_pe"`
		MaxPE                    float64 `yaml:"max_pe"`
		MaxDebtToEquity          float64 `yaml:"max_debt_to_equity"`
		MinSalesGrowth           float64 `yaml:"min_sales_growth"`
		MinProfitGrowth          float64 `yaml:"min_profit_growth"`
		RequireMarginImprovement bool    `yaml:"require_margin_improvement"`
		MaxResults               int     `yaml:"max_results"`
	} `yaml:"criteria"`
	Heuristics struct {
		SectorKeywords  []string `yaml:"sector_keywords"`
		PeerTitles      []string `yaml:"peer_titles"`
		QuarterlyTitles []string `yaml:"quarterly_titles"`
		AnnualTitles    []string `yaml:"annual_titles"`
		ScoringFile     string   `yaml:"scoring_file"`
	} `yaml:"heuristics"`
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Screener.BaseURL, "http://") && !strings.HasPrefix(c.Screener.BaseURL, "https://") {
		return fmt.Errorf("screener.base_url must be an http(s) URL, got '%s'", c.Screener.BaseURL)
	}
	if c.Screener.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("screener.request_timeout_seconds must be positive, got %d", c.Screener.RequestTimeoutSeconds)
	}
	if c.Screener.PacingMs < 0 || c.Screener.BackfillPacingMs < 0 {
		return errors.New("screener pacing must not be negative")
	}
	if c.Universe.ScanLimit <= 0 {
		return fmt.Errorf("universe.scan_limit must be positive, got %d", c.Universe.ScanLimit)
	}
	if len(c.Universe.Static) == 0 {
		return errors.New("universe.static cannot be empty")
	}
	if c.Criteria.MinPE > c.Criteria.MaxPE {
		return fmt.Errorf("criteria.min_pe (%.2f) exceeds criteria.max_pe (%.2f)", c.Criteria.MinPE, c.Criteria.MaxPE)
	}
	if c.Criteria.MaxResults <= 0 {
		return fmt.Errorf("criteria.max_results must be positive, got %d", c.Criteria.MaxResults)
	}
	if c.Kite.Enabled && c.Kite.Exchange == "" {
		return errors.New("kite.exchange is required when kite is enabled")
	}
	return nil
}

// LoadConfig reads path, fills defaults and validates.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig is LoadConfig without the file read.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Screener.BaseURL == "" {
		c.Screener.BaseURL = "https://www.screener.in"
	}
	c.Screener.BaseURL = strings.TrimRight(c.Screener.BaseURL, "/")
	if c.Screener.UserAgent == "" {
		c.Screener.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Screener.RequestTimeoutSeconds == 0 {
		c.Screener.RequestTimeoutSeconds = 10
	}
	if c.Screener.PacingMs == 0 {
		c.Screener.PacingMs = 500
	}
	if c.Screener.BackfillPacingMs == 0 {
		c.Screener.BackfillPacingMs = 300
	}
	if c.Screener.OverallTimeoutSeconds == 0 {
		c.Screener.OverallTimeoutSeconds = 300
	}
	if c.Screener.Retry.MaxAttempts == 0 {
		c.Screener.Retry.MaxAttempts = 1
	}
	if c.Screener.Retry.InitialWaitMs == 0 {
		c.Screener.Retry.InitialWaitMs = 1000
	}
	if c.Screener.Retry.MaxWaitMs == 0 {
		c.Screener.Retry.MaxWaitMs = 5000
	}

	if c.Secondary.BaseURL == "" {
		c.Secondary.BaseURL = "https://query2.finance.yahoo.com"
	}
	if c.Secondary.Suffix == "" {
		c.Secondary.Suffix = ".NS"
	}

	if c.Kite.APIKeyEnv == "" {
		c.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.Kite.AccessTokenEnv == "" {
		c.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}
	if c.Kite.Exchange == "" {
		c.Kite.Exchange = "NSE"
	}

	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache/screener"
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = 12
	}
	if c.Cache.ResultsTTLMinutes == 0 {
		c.Cache.ResultsTTLMinutes = 30
	}

	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs/screens"
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 30
	}

	if len(c.Universe.Static) == 0 {
		c.Universe.Static = DefaultUniverse()
	}
	if c.Universe.ScanLimit == 0 {
		c.Universe.ScanLimit = 30
	}

	if c.Criteria.MaxPEG == 0 {
		c.Criteria.MaxPEG = 3.0
	}
	if c.Criteria.MinPE == 0 {
		c.Criteria.MinPE = 5.0
	}
	if c.Criteria.MaxPE == 0 {
		c.Criteria.MaxPE = 35.0
	}
	if c.Criteria.MaxDebtToEquity == 0 {
		c.Criteria.MaxDebtToEquity = 1.0
	}
	if c.Criteria.MaxResults == 0 {
		c.Criteria.MaxResults = 10
	}
}

// DefaultUniverse is the curated NSE list, large caps first.
func DefaultUniverse() []string {
	return []string{
		// Nifty 50
		"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK", "HINDUNILVR", "ITC",
		"BHARTIARTL", "SBIN", "BAJFINANCE", "LICI", "LT", "AXISBANK", "HCLTECH",
		"MARUTI", "SUNPHARMA", "ULTRACEMCO", "WIPRO", "NESTLEIND", "ONGC",
		"TATAMOTORS", "TITAN", "NTPC", "POWERGRID", "ADANIENT", "COALINDIA",
		"TATASTEEL", "JSWSTEEL", "HINDALCO", "VEDL", "GRASIM", "DABUR",
		"BRITANNIA", "BAJAJFINSV", "KOTAKBANK", "PIDILITIND", "ASIANPAINT",
		"DIVISLAB", "CIPLA", "DRREDDY", "APOLLOHOSP", "TECHM", "INDUSINDBK",
		// Nifty Next 50
		"M&M", "BAJAJAUTO", "EICHERMOT", "HEROMOTOCO", "BANKBARODA", "CANBK",
		"UNIONBANK", "PNB", "IOC", "BPCL", "HPCL", "GAIL", "ADANIPORTS",
		"TATACONSUM", "GODREJCP", "MARICO", "COLPAL", "HAVELLS", "VOLTAS",
		"WHIRLPOOL", "AMBUJACEM", "ACC", "SHREECEM", "RAJESH", "RAMCOCEM",
		// Mid caps
		"SIEMENS", "ABB", "SCHNEIDER", "BHEL", "BEL", "ZOMATO", "PAYTM",
		"POLICYBZR", "ZYDUSLIFE", "TORNTPHARM", "ALKEM", "LUPIN", "AUROPHARMA",
		"LALPATHLAB", "METROPOLIS", "APLLTD", "MANAPPURAM", "MUTHOOTFIN",
	}
}
