package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"strings"
	"time"

	"github.com/AlexZinkM/safe-backend/internal/common"
	"github.com/AlexZinkM/safe-backend/internal/crypto"
	"github.com/AlexZinkM/safe-backend/safe"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Address  string `envconfig:"ADDRESS" default:"0.0.0.0"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	RPCURL string `envconfig:"RPC_URL" required:"true"`

	// Exactly one of BackendPrivateKey and BackendKeyFile must be set.
	BackendPrivateKey string `envconfig:"BACKEND_PRIVATE_KEY"`
	BackendKeyFile    string `envconfig:"BACKEND_KEY_FILE"`

	FallbackAddress     string `envconfig:"FALLBACK_ADDRESS" required:"true"`
	MasterCopyAddress   string `envconfig:"MASTER_COPY_CONTRACT_ADDRESS" required:"true"`
	ProxyFactoryAddress string `envconfig:"PROXY_FACTORY_CONTRACT_ADDRESS" required:"true"`
	SaltNonce           string `envconfig:"SALT_NONCE" required:"true"`

	// MinSignerBalance is in ether. A warning is logged at startup when the
	// backend signer holds less. Empty disables the check.
	MinSignerBalance string `envconfig:"MIN_SIGNER_BALANCE"`

	ReceiptPollInterval time.Duration `envconfig:"RECEIPT_POLL_INTERVAL" default:"2s"`
	ShutdownTimeout     time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return errors.New("RPC_URL must not be empty")
	}
	switch {
	case c.BackendPrivateKey == "" && c.BackendKeyFile == "":
		return errors.New("one of BACKEND_PRIVATE_KEY or BACKEND_KEY_FILE must be set")
	case c.BackendPrivateKey != "" && c.BackendKeyFile != "":
		return errors.New("BACKEND_PRIVATE_KEY and BACKEND_KEY_FILE are mutually exclusive")
	}
	if c.ReceiptPollInterval <= 0 {
		return fmt.Errorf("RECEIPT_POLL_INTERVAL must be positive, got %s", c.ReceiptPollInterval)
	}
	if _, err := c.WalletTemplate(); err != nil {
		return err
	}
	if _, err := c.MinBalance(); err != nil {
		return err
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}

// WalletTemplate parses the contract addresses and salt nonce shared by
// every wallet.
func (c *Config) WalletTemplate() (safe.TemplateConfig, error) {
	fallback, err := parseAddress("FALLBACK_ADDRESS", c.FallbackAddress)
	if err != nil {
		return safe.TemplateConfig{}, err
	}
	masterCopy, err := parseAddress("MASTER_COPY_CONTRACT_ADDRESS", c.MasterCopyAddress)
	if err != nil {
		return safe.TemplateConfig{}, err
	}
	factory, err := parseAddress("PROXY_FACTORY_CONTRACT_ADDRESS", c.ProxyFactoryAddress)
	if err != nil {
		return safe.TemplateConfig{}, err
	}
	saltNonce, err := common.ParseSaltNonce(c.SaltNonce)
	if err != nil {
		return safe.TemplateConfig{}, fmt.Errorf("SALT_NONCE: %w", err)
	}

	return safe.TemplateConfig{
		FallbackHandler: fallback,
		MasterCopy:      masterCopy,
		ProxyFactory:    factory,
		SaltNonce:       saltNonce,
	}, nil
}

// MinBalance returns MinSignerBalance in wei, or nil if unset.
func (c *Config) MinBalance() (*big.Int, error) {
	if c.MinSignerBalance == "" {
		return nil, nil
	}
	wei, err := common.ParseEther(c.MinSignerBalance)
	if err != nil {
		return nil, fmt.Errorf("MIN_SIGNER_BALANCE: %w", err)
	}
	return wei, nil
}

// PasswordFunc supplies the keystore password. The caller zeroes the
// returned slice after use.
type PasswordFunc func() ([]byte, error)

// SigningKey returns the backend signing key, either parsed from
// BACKEND_PRIVATE_KEY or decrypted from BACKEND_KEY_FILE with a password
// obtained from password.
func (c *Config) SigningKey(password PasswordFunc) (*ecdsa.PrivateKey, error) {
	if c.BackendPrivateKey != "" {
		key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(c.BackendPrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("BACKEND_PRIVATE_KEY: %w", err)
		}
		return key, nil
	}

	if password == nil {
		return nil, errors.New("no password source for BACKEND_KEY_FILE")
	}
	pw, err := password()
	if err != nil {
		return nil, err
	}
	defer clear(pw)

	key, err := crypto.DecryptKey(c.BackendKeyFile, pw)
	if err != nil {
		return nil, fmt.Errorf("BACKEND_KEY_FILE: %w", err)
	}
	return key, nil
}

func parseAddress(name, s string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, fmt.Errorf("%s: invalid address %q", name, s)
	}
	return ethcommon.HexToAddress(s), nil
}

// PromptForPassword prompts the user for the keystore password in the terminal.
// The password is read without echoing (hidden input).
// Call this at startup before the server begins handling requests.
func PromptForPassword() ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter keystore password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
