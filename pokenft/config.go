package pokenft

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// LoadConfig reads the TOML config at path and overlays secrets from the
// environment. A .env file next to the process is honored when present so
// credentials stay out of the config file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Web.AdminSecret = v
	}
	if v := os.Getenv("TCG_API_KEY"); v != "" {
		cfg.TCGAPI.APIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("SPACES_KEY"); v != "" {
		cfg.Spaces.Key = v
	}
	if v := os.Getenv("SPACES_SECRET"); v != "" {
		cfg.Spaces.Secret = v
	}
}

func (c *Config) validate() error {
	if c.Web.AdminSecret == "" {
		return fmt.Errorf("config: admin secret is not set (web.admin_secret or ADMIN_PASSWORD)")
	}
	if c.Booster.CardsPerBooster <= 0 {
		c.Booster.CardsPerBooster = 5
	}
	if c.TCGAPI.PageSize <= 0 {
		c.TCGAPI.PageSize = 10
	}
	if c.Chain.MarketAddress == "" {
		c.Chain.MarketAddress = "0xmarketplace"
	}
	return nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Web     WebConfig     `toml:"web"`
	DB      DBConfig      `toml:"db"`
	TCGAPI  TCGAPIConfig  `toml:"tcgapi"`
	Chain   ChainConfig   `toml:"chain"`
	Booster BoosterConfig `toml:"booster"`
	Spaces  SpacesConfig  `toml:"spaces"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	AdminSecret  string   `toml:"admin_secret"`
	AllowOrigins []string `toml:"allow_origins"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// TCGAPIConfig points at the upstream card catalog (the Pokémon TCG API).
type TCGAPIConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	PageSize  int    `toml:"page_size"`
	CacheFile string `toml:"cache_file"`
	SetsFile  string `toml:"sets_file"`
}

// ChainConfig holds the ledger parameters: the operator address allowed to
// mint, and the fixed fees charged at booster creation and redemption.
type ChainConfig struct {
	OperatorAddress  string `toml:"operator_address"`
	MarketAddress    string `toml:"market_address"`
	BoosterFeeWei    int64  `toml:"booster_fee_wei"`
	RedemptionFeeWei int64  `toml:"redemption_fee_wei"`
}

type BoosterConfig struct {
	CardsPerBooster int `toml:"cards_per_booster"`
}

type SpacesConfig struct {
	Enabled  bool   `toml:"enabled"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	CardRoot string `toml:"cardroot"`
}
