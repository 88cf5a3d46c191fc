// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Security SecurityConfig
	HostBill HostBillConfig
	BankID   BankIDConfig
	Catalog  CatalogConfig
	Pricing  PricingConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	CompanyName string
	CompanyOrg  string
	CompanyWeb  string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	CartTTL      time.Duration
}

// SessionConfig contains storefront session token configuration
type SessionConfig struct {
	Secret string
	Expiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// HostBillConfig contains the billing system API configuration
type HostBillConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Timeout    time.Duration
	CSRFHeader string
}

// BankIDConfig contains BankID signing gateway configuration
type BankIDConfig struct {
	BaseURL       string
	Timeout       time.Duration
	PollInterval  time.Duration
	CountdownFrom int // seconds shown to the user before local timeout
	SessionTTL    time.Duration
}

// CatalogConfig contains the product id sets and category ids that drive
// classification. These mirror how the billing system is configured, so they
// come from the environment rather than code.
type CatalogConfig struct {
	BroadbandCategoryID int
	TVCategoryID        int
	TelephonyCategoryID int
	RouterProductIDs    []int
	TVServiceIDs        []int
	TelephonyServiceIDs []int
	MonthlyBoundIDs     []int
	PortingAddonID      int
	NewNumberAddonID    int
	PromoCampaigns      map[int]PromoCampaign
}

// PromoCampaign is a locally configured promotional price override
type PromoCampaign struct {
	Price  int64 // monthly price excl. VAT during the campaign
	Months int
}

// PricingConfig contains tax rates and fixed fee tables
type PricingConfig struct {
	TaxRate         float64 // multiplier, e.g. 1.25 for 25% VAT
	CompanyTaxRate  float64
	PortingFee      int64
	NewNumberFee    int64
	HardwareFees    map[string]int64 // one-time fee keyed by hardware type
	DefaultHardware int64            // fallback when hardware type is unknown
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront Backend"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			CompanyName: getEnv("COMPANY_NAME", "Junet AB"),
			CompanyOrg:  getEnv("COMPANY_ORG_NR", ""),
			CompanyWeb:  getEnv("COMPANY_WEBSITE", ""),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			CartTTL:      getEnvAsDuration("CART_TTL", 7*24*time.Hour),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "change-me-to-a-long-random-session-secret"),
			Expiry: getEnvAsDuration("SESSION_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-Token", "X-CSRF-Token"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		HostBill: HostBillConfig{
			BaseURL:    getEnv("HOSTBILL_BASE_URL", "https://billing.example.se/api"),
			APIKey:     getEnv("HOSTBILL_API_KEY", ""),
			APISecret:  getEnv("HOSTBILL_API_SECRET", ""),
			Timeout:    getEnvAsDuration("HOSTBILL_TIMEOUT", 30*time.Second),
			CSRFHeader: getEnv("HOSTBILL_CSRF_HEADER", "X-CSRF-Token"),
		},
		BankID: BankIDConfig{
			BaseURL:       getEnv("BANKID_BASE_URL", "https://signing.example.se/api"),
			Timeout:       getEnvAsDuration("BANKID_TIMEOUT", 10*time.Second),
			PollInterval:  getEnvAsDuration("BANKID_POLL_INTERVAL", 2*time.Second),
			CountdownFrom: getEnvAsInt("BANKID_COUNTDOWN_SECONDS", 180),
			SessionTTL:    getEnvAsDuration("BANKID_SESSION_TTL", 10*time.Minute),
		},
		Catalog: CatalogConfig{
			BroadbandCategoryID: getEnvAsInt("CATEGORY_ID_BROADBAND", 10),
			TVCategoryID:        getEnvAsInt("CATEGORY_ID_TV", 11),
			TelephonyCategoryID: getEnvAsInt("CATEGORY_ID_TELEPHONY", 12),
			RouterProductIDs:    getEnvAsIntSlice("ROUTER_PRODUCT_IDS", []int{}),
			TVServiceIDs:        getEnvAsIntSlice("TV_SERVICE_IDS", []int{}),
			TelephonyServiceIDs: getEnvAsIntSlice("TELEPHONY_SERVICE_IDS", []int{}),
			MonthlyBoundIDs:     getEnvAsIntSlice("MONTHLY_BOUND_IDS", []int{}),
			PortingAddonID:      getEnvAsInt("PORTING_ADDON_ID", 0),
			NewNumberAddonID:    getEnvAsInt("NEW_NUMBER_ADDON_ID", 0),
			PromoCampaigns:      parsePromoCampaigns(getEnv("PROMO_CAMPAIGNS", "")),
		},
		Pricing: PricingConfig{
			TaxRate:         getEnvAsFloat("TAX_RATE", 1.25),
			CompanyTaxRate:  getEnvAsFloat("COMPANY_TAX_RATE", 1.0),
			PortingFee:      getEnvAsInt64("PORTING_FEE", 250),
			NewNumberFee:    getEnvAsInt64("NEW_NUMBER_FEE", 0),
			HardwareFees:    parseFeeTable(getEnv("HARDWARE_FEES", "")),
			DefaultHardware: getEnvAsInt64("DEFAULT_HARDWARE_FEE", 395),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.HostBill.BaseURL == "" {
		return fmt.Errorf("HOSTBILL_BASE_URL is required")
	}

	if c.Pricing.TaxRate <= 0 {
		return fmt.Errorf("TAX_RATE must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvAsIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []int
	for _, part := range strings.Split(value, ",") {
		if intValue, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			result = append(result, intValue)
		}
	}
	return result
}

// parsePromoCampaigns parses "id:price:months,id:price:months" into the
// promotional override table.
func parsePromoCampaigns(value string) map[int]PromoCampaign {
	campaigns := make(map[int]PromoCampaign)
	if value == "" {
		return campaigns
	}

	for _, entry := range strings.Split(value, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			continue
		}
		id, err1 := strconv.Atoi(parts[0])
		price, err2 := strconv.ParseInt(parts[1], 10, 64)
		months, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		campaigns[id] = PromoCampaign{Price: price, Months: months}
	}
	return campaigns
}

// parseFeeTable parses "type:fee,type:fee" into the hardware fee table.
func parseFeeTable(value string) map[string]int64 {
	fees := make(map[string]int64)
	if value == "" {
		return fees
	}

	for _, entry := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 {
			continue
		}
		fee, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		fees[parts[0]] = fee
	}
	return fees
}
