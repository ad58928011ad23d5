package safe

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/safe-backend/internal/logging"
	"github.com/AlexZinkM/safe-backend/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
	"github.com/rs/zerolog"
)

// Service implements Safe on top of a Chain.
type Service struct {
	chain    Chain
	template TemplateConfig
	logger   zerolog.Logger
}

var _ Safe = (*Service)(nil)

// NewService creates a Service. The template is copied and never modified.
func NewService(chain Chain, template TemplateConfig, logger zerolog.Logger) *Service {
	return &Service{
		chain:    chain,
		template: template,
		logger:   logger,
	}
}

// Info returns the wallet address of ownerAddress and its deployment state.
func (s *Service) Info(ctx context.Context, ownerAddress string) (*model.SafeInfo, error) {
	owner, err := ParseAddress("owner", ownerAddress)
	if err != nil {
		return nil, err
	}

	d, err := s.derive(ctx, owner)
	if err != nil {
		return nil, err
	}

	deployed, err := s.isDeployed(ctx, d.address)
	if err != nil {
		return nil, err
	}

	return &model.SafeInfo{
		Address:    d.address.Hex(),
		IsDeployed: deployed,
	}, nil
}

// receiptHashes extracts the block and transaction hash of the first log
// emitted by a mined transaction.
func (s *Service) receiptHashes(receipt *types.Receipt) (*model.SafeResponse, error) {
	s.logger.Debug().
		Str(logging.FieldTxHash, receipt.TxHash.Hex()).
		Uint64("status", receipt.Status).
		Uint64("gasUsed", receipt.GasUsed).
		Int("logs", len(receipt.Logs)).
		Msg("received receipt")

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, rpcError("receipt", fmt.Errorf("transaction %s reverted", receipt.TxHash.Hex()))
	}
	if len(receipt.Logs) == 0 || receipt.Logs[0] == nil {
		return nil, rpcError("receipt", fmt.Errorf("transaction %s emitted no logs", receipt.TxHash.Hex()))
	}

	first := receipt.Logs[0]
	return &model.SafeResponse{
		BlockHash:       first.BlockHash.Hex(),
		TransactionHash: first.TxHash.Hex(),
	}, nil
}

// submit sends a call of fn on contract and waits until it is mined.
func (s *Service) submit(ctx context.Context, op string, contract common.Address, fn *w3.Func, args ...any) (*model.SafeResponse, error) {
	txHash, err := s.chain.Transact(ctx, contract, fn, args...)
	if err != nil {
		return nil, rpcError(op, err)
	}
	s.logger.Info().
		Str("contract", contract.Hex()).
		Str(logging.FieldTxHash, txHash.Hex()).
		Msgf("%s submitted", op)

	receipt, err := s.chain.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, rpcError(op, err)
	}
	return s.receiptHashes(receipt)
}
