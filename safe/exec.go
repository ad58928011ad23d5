package safe

import (
	"context"
	"errors"
	"math/big"

	"github.com/AlexZinkM/safe-backend/internal/common"
	"github.com/AlexZinkM/safe-backend/internal/logging"
	"github.com/AlexZinkM/safe-backend/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var errMissingCall = errors.New("missing transaction")

// Call is a validated Safe transaction.
type Call struct {
	To             ethcommon.Address
	Value          *big.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       ethcommon.Address
	RefundReceiver ethcommon.Address
	Signatures     []byte
}

// ParseCall validates a transaction request. Fields are checked in a fixed
// order (operation, to, value, safeTxGas, baseGas, gasPrice, gasToken,
// refundReceiver) and the first invalid one is reported.
func ParseCall(req *model.SafeCall) (*Call, error) {
	if req == nil {
		return nil, badParams("body", errMissingCall)
	}

	var (
		c   Call
		err error
	)
	if c.Operation, err = ParseOperation(req.Operation); err != nil {
		return nil, err
	}
	if c.To, err = ParseAddress("to", req.To); err != nil {
		return nil, err
	}
	if c.Value, err = parseAmount("value", req.Value); err != nil {
		return nil, err
	}
	if c.SafeTxGas, err = parseAmount("safeTxGas", req.SafeTxGas); err != nil {
		return nil, err
	}
	if c.BaseGas, err = parseAmount("baseGas", req.BaseGas); err != nil {
		return nil, err
	}
	if c.GasPrice, err = parseAmount("gasPrice", req.GasPrice); err != nil {
		return nil, err
	}
	if c.GasToken, err = ParseAddress("gasToken", req.GasToken); err != nil {
		return nil, err
	}
	if c.RefundReceiver, err = ParseAddress("refundReceiver", req.RefundReceiver); err != nil {
		return nil, err
	}

	c.Data = append([]byte{}, req.Data...)
	c.Signatures = append([]byte{}, req.Signatures...)
	return &c, nil
}

// Exec forwards call to execTransaction of the deployed wallet of
// ownerAddress. The deployment check runs before the call is validated.
func (s *Service) Exec(ctx context.Context, ownerAddress string, req *model.SafeCall) (*model.SafeResponse, error) {
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
	if !deployed {
		return nil, ErrNotDeployed
	}

	call, err := ParseCall(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str(logging.FieldSafe, d.address.Hex()).
		Str("to", call.To.Hex()).
		Str("value", call.Value.String()).
		Stringer("operation", call.Operation).
		Msg("executing safe transaction")

	return s.submit(ctx, "execTransaction", d.address, funcExecTransaction,
		call.To,
		call.Value,
		call.Data,
		uint8(call.Operation),
		call.SafeTxGas,
		call.BaseGas,
		call.GasPrice,
		call.GasToken,
		call.RefundReceiver,
		call.Signatures,
	)
}

func parseAmount(field, s string) (*big.Int, error) {
	n, err := common.ParseUint256(s)
	if err != nil {
		return nil, badParams(field, err)
	}
	return n, nil
}
