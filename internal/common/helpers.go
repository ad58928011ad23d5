package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	EtherDecimals = 18 // ETH has 18 decimals (wei)
	maxSaltBytes  = 32
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ParseUint256 parses a non-negative decimal integer that fits into uint256.
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty string")
	}
	if s[0] < '0' || s[0] > '9' {
		return nil, fmt.Errorf("%q is not a non-negative decimal integer", s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a decimal integer", s)
	}
	if n.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%q overflows uint256", s)
	}
	return n, nil
}

// ParseSaltNonce decodes a hex byte string (with or without 0x prefix) and
// reads it as a big-endian uint256.
func ParseSaltNonce(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid salt nonce hex: %w", err)
	}
	if len(raw) > maxSaltBytes {
		return nil, fmt.Errorf("salt nonce is %d bytes, at most %d allowed", len(raw), maxSaltBytes)
	}
	return new(big.Int).SetBytes(raw), nil
}

// FormatWei converts wei to an ETH string without float precision loss
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return formatWithDecimals("0", EtherDecimals)
	}
	if wei.Sign() < 0 {
		return "-" + formatWithDecimals(new(big.Int).Neg(wei).String(), EtherDecimals)
	}
	return formatWithDecimals(wei.String(), EtherDecimals)
}

// ParseEther converts an ETH string to wei without float precision loss
func ParseEther(eth string) (*big.Int, error) {
	return parseWithDecimals(eth, EtherDecimals)
}

// formatWithDecimals inserts a decimal point into a string of digits
// Example: formatWithDecimals("24981836", 9) = "0.024981836"
func formatWithDecimals(digits string, decimals int) string {
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	pos := len(digits) - decimals
	return digits[:pos] + "." + digits[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, errors.New("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	n, err := ParseUint256(whole + frac)
	if err != nil {
		return nil, err
	}
	return n, nil
}
