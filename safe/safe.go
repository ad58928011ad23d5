// Package safe derives, deploys and drives per-user Safe smart-contract
// wallets whose address is known before the contract exists on chain.
package safe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/safe-backend/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

// Safe is the wallet capability exposed to the HTTP layer.
type Safe interface {
	// Info returns the deterministic wallet address of owner and whether
	// a contract is already deployed there.
	Info(ctx context.Context, ownerAddress string) (*model.SafeInfo, error)

	// Deploy creates the wallet of owner through the proxy factory.
	Deploy(ctx context.Context, ownerAddress string) (*model.SafeResponse, error)

	// Exec forwards a signed Safe transaction to the deployed wallet of owner.
	Exec(ctx context.Context, ownerAddress string, call *model.SafeCall) (*model.SafeResponse, error)
}

// Chain is the subset of an EVM client the wallet logic depends on.
// Implementations must be safe for concurrent use.
type Chain interface {
	// CodeAt returns the contract code at addr in the latest block.
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)

	// CallFunc performs a read-only call of fn on contract and decodes the
	// result into returns.
	CallFunc(ctx context.Context, contract common.Address, fn *w3.Func, args []any, returns ...any) error

	// Transact encodes a call of fn, signs it with the backend key and
	// submits it. It returns the hash of the submitted transaction.
	Transact(ctx context.Context, contract common.Address, fn *w3.Func, args ...any) (common.Hash, error)

	// WaitForReceipt blocks until the transaction is mined or ctx is done.
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TemplateConfig holds the contracts and salt shared by every wallet.
// It is created once at startup and must not be mutated afterwards.
type TemplateConfig struct {
	FallbackHandler common.Address
	MasterCopy      common.Address
	ProxyFactory    common.Address
	SaltNonce       *big.Int
}

// Operation selects how a Safe transaction is executed.
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

// ParseOperation validates a raw operation code.
func ParseOperation(v uint8) (Operation, error) {
	switch op := Operation(v); op {
	case OperationCall, OperationDelegateCall:
		return op, nil
	default:
		return 0, badParams("operation", fmt.Errorf("unknown Operation enum variant %d", v))
	}
}

func (o Operation) String() string {
	switch o {
	case OperationCall:
		return "Call"
	case OperationDelegateCall:
		return "DelegateCall"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// ParseAddress validates a hex chain address. Checksums are not enforced.
func ParseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, badAddress(field, fmt.Errorf("%q is not a hex address", s))
	}
	return common.HexToAddress(s), nil
}
