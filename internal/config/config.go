package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Scraper  ScraperConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScraperConfig struct {
	BaseURL      string
	CatalogPath  string
	CookieDomain string
	CookieName   string
	CookieValue  string

	Headless                bool
	ChallengeTimeoutSeconds int

	CategoriesLimit     int
	ProductsPerCategory int
	MaxPagesPerCategory int

	AutoSaveEvery int
	AutoSavePath  string
	OutputPath    string
	UseMock       bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8085),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "fixnew"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scraper: ScraperConfig{
			BaseURL:      getEnv("SCRAPE_BASE_URL", "https://www.vseinstrumenti.ru"),
			CatalogPath:  getEnv("SCRAPE_CATALOG_PATH", "/catalog/"),
			CookieDomain: getEnv("SCRAPE_COOKIE_DOMAIN", ".vseinstrumenti.ru"),
			CookieName:   getEnv("SCRAPE_COOKIE_NAME", "region_id"),
			CookieValue:  getEnv("SCRAPE_COOKIE_VALUE", "77"),

			Headless:                getEnvBool("SCRAPE_HEADLESS", true),
			ChallengeTimeoutSeconds: getEnvInt("SCRAPE_CHALLENGE_TIMEOUT", 30),

			CategoriesLimit:     getEnvInt("SCRAPE_CATEGORIES_LIMIT", 3),
			ProductsPerCategory: getEnvInt("SCRAPE_PRODUCTS_PER_CATEGORY", 20),
			MaxPagesPerCategory: getEnvInt("SCRAPE_MAX_PAGES", 5),

			AutoSaveEvery: getEnvInt("SCRAPE_AUTOSAVE_EVERY", 0),
			AutoSavePath:  getEnv("SCRAPE_AUTOSAVE_PATH", "data/scrape-checkpoint.json"),
			OutputPath:    getEnv("SCRAPE_OUTPUT_PATH", "data/scraped-products.json"),
			UseMock:       getEnvBool("SCRAPE_USE_MOCK", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scrape base URL is required")
	}

	if c.Scraper.CategoriesLimit < 1 {
		return fmt.Errorf("at least 1 category is required")
	}

	if c.Scraper.ProductsPerCategory < 1 {
		return fmt.Errorf("at least 1 product per category is required")
	}

	if c.Scraper.MaxPagesPerCategory < 1 {
		return fmt.Errorf("at least 1 page per category is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
