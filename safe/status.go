package safe

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// isDeployed reports whether a contract exists at addr.
func (s *Service) isDeployed(ctx context.Context, addr common.Address) (bool, error) {
	code, err := s.chain.CodeAt(ctx, addr)
	if err != nil {
		return false, rpcError("getCode", err)
	}
	s.logger.Debug().
		Str("address", addr.Hex()).
		Int("codeLength", len(code)).
		Msg("fetched code")
	return len(code) > 0, nil
}
