package app

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
)

// Defaults for the scroll-sepolia ERC20 paymaster flow.
const (
	defaultERC20Paymaster = "0x65B8C906cf61eB52E12B0c68AE0f7D46E3386903"
	defaultToken          = "0x00A5Aa31fe45ef1627222b9eFEf7A05f841dC1E3"
	defaultRouter         = "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"
)

type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Hex ECDSA key of the account owner, without 0x prefix
	SigningKey *string
	// Hosted bundler and paymaster API key
	APIKey *string

	EntryPoint        common.Address
	EntryPointVersion erc4337.EntryPointVersion
	FactoryAddress    common.Address
	DATSAddress       common.Address

	// =========================== OPTIONAL ===========================

	Chain        Chain
	RPCURL       *string
	BundlerURL   *string
	PaymasterURL *string

	// When false, gas limits come from the bundler estimate and the account pays
	UsePaymaster bool
	// Sponsorship policy forwarded to pm_sponsorUserOperation, nil when unset
	SponsorshipPolicyID *string

	ERC20PaymasterAddress common.Address
	TokenAddress          common.Address
	RouterAddress         common.Address

	// Salt of the counterfactual account; derived from AccountEmail when that is set
	AccountSalt  *big.Int
	AccountEmail *string

	// Logging configuration
	LogLevel *string

	// Receipt polling
	ReceiptPollInterval time.Duration
	ReceiptTimeout      time.Duration
	GasPriceTier        *string

	// History and status cache, nil when disabled
	DSN           *string
	RedisAddr     *string
	MigrationPath *string

	// HTTP server configuration
	Port         *string
	AllowOrigins *[]string
	// Shared secret expected in X-API-Secret, nil leaves the API open
	APISecret *string
}

// LoadEnvFile overloads the process environment with the given .env file when it exists.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewAppConfig reads the configuration from the environment. Every value is validated
// here so that a bad configuration is reported before any network call.
func NewAppConfig() (*AppConfig, error) {
	config := &AppConfig{}

	// Load required configuration
	if err := loadRequiredConfig(config); err != nil {
		return nil, err
	}

	// Load optional configuration with defaults
	if err := loadOptionalConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// MigrationConfig is the subset needed by the migrate command, which must work without the
// signing and bundler settings.
type MigrationConfig struct {
	DSN           string
	MigrationPath string
}

func NewMigrationConfig() (*MigrationConfig, error) {
	dsn, err := requireEnv("DB_URL")
	if err != nil {
		return nil, err
	}
	return &MigrationConfig{
		DSN:           dsn,
		MigrationPath: getEnvWithDefault("MIGRATION_PATH", "file://migrations"),
	}, nil
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing
func loadRequiredConfig(config *AppConfig) error {
	signingKey, err := requireEnv("SIGNING_KEY")
	if err != nil {
		return err
	}
	// Remove 0x prefix if it exists
	signingKey = strings.TrimPrefix(signingKey, "0x")
	if _, err := crypto.HexToECDSA(signingKey); err != nil {
		return invalid("SIGNING_KEY", err)
	}
	config.SigningKey = &signingKey

	apiKey, err := requireEnv("PIMLICO_API_KEY")
	if err != nil {
		return err
	}
	config.APIKey = &apiKey

	if config.EntryPoint, err = requireAddress("ENTRY_POINT_ADDRESS"); err != nil {
		return err
	}
	if config.EntryPointVersion, err = erc4337.VersionOf(config.EntryPoint); err != nil {
		return invalid("ENTRY_POINT_ADDRESS", err)
	}

	if config.FactoryAddress, err = requireAddress("FACTORY_ADDRESS"); err != nil {
		return err
	}
	if config.DATSAddress, err = requireAddress("DATS_CONTRACT_ADDRESS"); err != nil {
		return err
	}

	return nil
}

// loadOptionalConfig loads all optional configuration values with sensible defaults
func loadOptionalConfig(config *AppConfig) error {
	var err error

	if config.Chain, err = LookupChain(getEnvWithDefault("CHAIN", "sepolia")); err != nil {
		return invalid("CHAIN", err)
	}

	rpcURL := getEnvWithDefault("RPC_URL", config.Chain.RPCURL)
	config.RPCURL = &rpcURL

	bundlerURL := getEnvWithDefault("BUNDLER_URL", config.Chain.BundlerURL(*config.APIKey))
	config.BundlerURL = &bundlerURL

	paymasterURL := getEnvWithDefault("PAYMASTER_URL", config.Chain.PaymasterURL(*config.APIKey))
	config.PaymasterURL = &paymasterURL

	if config.UsePaymaster, err = boolWithDefault("USE_PAYMASTER", true); err != nil {
		return err
	}
	config.SponsorshipPolicyID = optionalEnv("SPONSORSHIP_POLICY_ID")

	if config.ERC20PaymasterAddress, err = addressWithDefault("ERC20_PAYMASTER_ADDRESS", defaultERC20Paymaster); err != nil {
		return err
	}
	if config.TokenAddress, err = addressWithDefault("TOKEN_ADDRESS", defaultToken); err != nil {
		return err
	}
	if config.RouterAddress, err = addressWithDefault("ROUTER_ADDRESS", defaultRouter); err != nil {
		return err
	}

	if err := loadAccountSalt(config); err != nil {
		return err
	}

	// Log level (default: debug)
	// Available levels: "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"
	logLevel := getEnvWithDefault("LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	if config.ReceiptPollInterval, err = secondsWithDefault("RECEIPT_POLL_INTERVAL", 2); err != nil {
		return err
	}
	if config.ReceiptTimeout, err = secondsWithDefault("RECEIPT_TIMEOUT", 120); err != nil {
		return err
	}

	tier := getEnvWithDefault("GAS_PRICE_TIER", "fast")
	switch tier {
	case "slow", "standard", "fast":
	default:
		return invalid("GAS_PRICE_TIER", fmt.Errorf("unknown tier %q", tier))
	}
	config.GasPriceTier = &tier

	config.DSN = optionalEnv("DB_URL")
	config.RedisAddr = optionalEnv("REDIS_URL")

	// Migration path (default: file://migrations)
	migrationPath := getEnvWithDefault("MIGRATION_PATH", "file://migrations")
	config.MigrationPath = &migrationPath

	// HTTP server port (default: 8080)
	port := getEnvWithDefault("PORT", "8080")
	config.Port = &port

	loadCORSConfig(config)
	config.APISecret = optionalEnv("API_SECRET")

	return nil
}

// loadAccountSalt resolves the account salt, preferring ACCOUNT_EMAIL over ACCOUNT_SALT
func loadAccountSalt(config *AppConfig) error {
	config.AccountEmail = optionalEnv("ACCOUNT_EMAIL")
	if config.AccountEmail != nil {
		salt, err := calldata.EmailSalt(*config.AccountEmail)
		if err != nil {
			return invalid("ACCOUNT_EMAIL", err)
		}
		config.AccountSalt = salt
		return nil
	}

	salt, err := calldata.ParseSalt(getEnvWithDefault("ACCOUNT_SALT", "0"))
	if err != nil {
		return invalid("ACCOUNT_SALT", err)
	}
	config.AccountSalt = salt
	return nil
}

// loadCORSConfig parses comma-separated origins, defaulting to the local frontend
func loadCORSConfig(config *AppConfig) {
	var allowOrigins []string
	for _, origin := range strings.Split(os.Getenv("ALLOW_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowOrigins = append(allowOrigins, origin)
		}
	}
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:5173"}
	}
	config.AllowOrigins = &allowOrigins
}

func requireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", domain.NewError(domain.ErrorCodeConfigMissing, fmt.Errorf("REQUIRED: %s not set in environment", key))
	}
	return value, nil
}

func requireAddress(key string) (common.Address, error) {
	value, err := requireEnv(key)
	if err != nil {
		return common.Address{}, err
	}
	return parseAddress(key, value)
}

func addressWithDefault(key, defaultValue string) (common.Address, error) {
	return parseAddress(key, getEnvWithDefault(key, defaultValue))
}

func parseAddress(key, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, invalid(key, fmt.Errorf("%q is not a hex address", value))
	}
	return common.HexToAddress(value), nil
}

func secondsWithDefault(key string, defaultValue int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(defaultValue) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, invalid(key, fmt.Errorf("%q is not a positive number of seconds", raw))
	}
	return time.Duration(seconds) * time.Second, nil
}

func boolWithDefault(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalid(key, fmt.Errorf("%q is not a boolean", raw))
	}
	return value, nil
}

func invalid(key string, err error) error {
	return domain.NewError(domain.ErrorCodeConfigInvalid, fmt.Errorf("INVALID: %s: %w", key, err))
}

func optionalEnv(key string) *string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	return &value
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
