package safe

import (
	"context"
	"math/big"

	"github.com/AlexZinkM/safe-backend/internal/logging"
	"github.com/AlexZinkM/safe-backend/internal/packed"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// derivation is the result of computing a wallet address for one owner.
type derivation struct {
	initializer []byte
	address     common.Address
}

// SaltFor returns the CREATE2 salt the proxy factory uses:
// keccak256(abi.encodePacked(keccak256(initializer), saltNonce)).
func SaltFor(initializer []byte, saltNonce *big.Int) (common.Hash, error) {
	salt, err := packed.Keccak256(crypto.Keccak256(initializer), saltNonce)
	if err != nil {
		return common.Hash{}, badParams("salt", err)
	}
	return salt, nil
}

// InitCodeHash returns keccak256(abi.encodePacked(creationCode, uint256(masterCopy))),
// the hash of the proxy deployment code.
func InitCodeHash(creationCode []byte, masterCopy common.Address) (common.Hash, error) {
	h, err := packed.Keccak256(creationCode, new(big.Int).SetBytes(masterCopy.Bytes()))
	if err != nil {
		return common.Hash{}, badParams("init code", err)
	}
	return h, nil
}

// Create2Address returns keccak256(0xff ++ factory ++ salt ++ initCodeHash)[12:].
func Create2Address(factory common.Address, salt, initCodeHash common.Hash) common.Address {
	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}

// derive computes the wallet address of owner. The proxy creation code is
// fetched from the factory on every call.
func (s *Service) derive(ctx context.Context, owner common.Address) (*derivation, error) {
	initializer, err := EncodeInitializer(owner, s.template)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str(logging.FieldOwner, owner.Hex()).
		Str("initializerHash", hexutil.Encode(crypto.Keccak256(initializer))).
		Msg("encoded initializer")

	salt, err := SaltFor(initializer, s.template.SaltNonce)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("salt", salt.Hex()).Msg("computed salt")

	var creationCode []byte
	if err := s.chain.CallFunc(ctx, s.template.ProxyFactory, funcProxyCreationCode, nil, &creationCode); err != nil {
		return nil, rpcError("proxyCreationCode", err)
	}

	initCodeHash, err := InitCodeHash(creationCode, s.template.MasterCopy)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("initCodeHash", initCodeHash.Hex()).Msg("computed init code hash")

	addr := Create2Address(s.template.ProxyFactory, salt, initCodeHash)
	s.logger.Debug().Str("address", addr.Hex()).Msg("derived safe address")

	return &derivation{
		initializer: initializer,
		address:     addr,
	}, nil
}
