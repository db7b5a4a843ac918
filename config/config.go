package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port    string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ChainConfig covers the custodial wallet platform the server signs
// through, plus the contract addresses it talks to.
type ChainConfig struct {
	BaseURL       string
	APIKey        string
	WalletID      string
	WalletAddress string

	RegistryAddress   string
	ResolverAddress   string
	WrapperAddress    string
	ControllerAddress string
	VaultAddress      string

	RequestTimeoutSec int
	PollIntervalSec   int
	ConfirmTimeoutSec int
}

type PayrollConfig struct {
	TokenDecimals   int
	ResolveAtPayout bool
}

type AuthConfig struct {
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

type Config struct {
	Server  ServerConfig
	DB      DatabaseConfig
	Redis   RedisConfig
	Chain   ChainConfig
	Payroll PayrollConfig
	Auth    AuthConfig
	Env     string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "nominal"),
			Password: getEnv("DB_PASS", "nominal"),
			DBName:   getEnv("DB_NAME", "nominal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Chain: ChainConfig{
			BaseURL:           getEnv("CHAIN_API_URL", "https://api.circle.com"),
			APIKey:            getEnv("CHAIN_API_KEY", ""),
			WalletID:          getEnv("CHAIN_WALLET_ID", ""),
			WalletAddress:     getEnv("CHAIN_WALLET_ADDRESS", ""),
			RegistryAddress:   getEnv("ENS_REGISTRY_ADDRESS", "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"),
			ResolverAddress:   getEnv("ENS_RESOLVER_ADDRESS", ""),
			WrapperAddress:    getEnv("ENS_WRAPPER_ADDRESS", ""),
			ControllerAddress: getEnv("ENS_CONTROLLER_ADDRESS", ""),
			VaultAddress:      getEnv("PAYROLL_VAULT_ADDRESS", ""),
			RequestTimeoutSec: getEnvInt("CHAIN_REQUEST_TIMEOUT_SEC", 30),
			PollIntervalSec:   getEnvInt("CHAIN_POLL_INTERVAL_SEC", 2),
			ConfirmTimeoutSec: getEnvInt("CHAIN_CONFIRM_TIMEOUT_SEC", 120),
		},
		Payroll: PayrollConfig{
			TokenDecimals:   getEnvInt("PAYROLL_TOKEN_DECIMALS", 6),
			ResolveAtPayout: getEnvBool("PAYROLL_RESOLVE_AT_PAYOUT", false),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "SECRET"),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		},
		Env: getEnv("ENV", "prod"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
