// Package packed implements the tight "abi.encodePacked" byte layout used by
// Solidity's keccak256(abi.encodePacked(...)) idiom.
//
// Unlike standard ABI encoding no value is padded to a word boundary: an
// address takes 20 bytes, a 256-bit integer 32 bytes, a bool a single byte and
// byte strings or strings are copied verbatim without a length prefix.
package packed

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrUnsupportedType is returned for values outside the packed type set.
	ErrUnsupportedType = errors.New("unsupported packed type")
	// ErrOutOfRange is returned for integers that do not fit into 256 bits.
	ErrOutOfRange = errors.New("integer out of 256-bit range")
)

var minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))

// Encode concatenates values using the packed layout.
//
// Supported Go types and their packed form:
//
//	common.Address  20 bytes
//	common.Hash     32 bytes
//	[]byte          raw bytes
//	*big.Int        32 bytes big-endian, two's complement when negative
//	string          raw UTF-8 bytes
//	bool            1 byte
func Encode(values ...any) ([]byte, error) {
	out := make([]byte, 0, 32*len(values))
	for i, v := range values {
		var err error
		out, err = appendValue(out, v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return out, nil
}

// Keccak256 returns keccak256 of the packed encoding of values.
func Keccak256(values ...any) (common.Hash, error) {
	enc, err := Encode(values...)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

func appendValue(out []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case common.Address:
		return append(out, val.Bytes()...), nil
	case common.Hash:
		return append(out, val.Bytes()...), nil
	case []byte:
		return append(out, val...), nil
	case *big.Int:
		word, err := intWord(val)
		if err != nil {
			return nil, err
		}
		return append(out, word...), nil
	case string:
		return append(out, val...), nil
	case bool:
		if val {
			return append(out, 1), nil
		}
		return append(out, 0), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// intWord returns the 32-byte word of n. Non-negative values are read as
// uint256, negative ones as int256.
func intWord(n *big.Int) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil integer", ErrUnsupportedType)
	}
	if n.Sign() >= 0 && n.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, n)
	}
	if n.Sign() < 0 && n.Cmp(minInt256) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, n)
	}
	// U256Bytes mutates its argument.
	return math.U256Bytes(new(big.Int).Set(n)), nil
}
