package client

import (
	"math/big"

	"github.com/AlexZinkM/safe-backend/internal/model"
	"github.com/AlexZinkM/safe-backend/safe"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

var (
	serviceProxyFactory = common.HexToAddress("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")
	serviceCreationCode = hexutil.MustDecode("0x608060405234801561001057600080fd5b50")
)

const (
	serviceOwner       = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	serviceSafeAddress = "0x6C4CA6bf4b35e94cea510e0dc3cfFa36474127CC"
)

// newSafeService runs a safe.Service over the real client and makes the
// fake node answer proxyCreationCode() and mine every transaction.
func (s *EthereumClientTestSuite) newSafeService() *safe.Service {
	bytesType, err := abi.NewType("bytes", "", nil)
	s.Require().NoError(err)
	encoded, err := abi.Arguments{{Type: bytesType}}.Pack(serviceCreationCode)
	s.Require().NoError(err)

	s.api.callResults[[4]byte(hexutil.MustDecode("0x53e5d935"))] = encoded
	s.api.mine = true

	return safe.NewService(s.client, safe.TemplateConfig{
		FallbackHandler: common.HexToAddress("0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4"),
		MasterCopy:      common.HexToAddress("0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552"),
		ProxyFactory:    serviceProxyFactory,
		SaltNonce:       big.NewInt(1),
	}, zerolog.Nop())
}

func (s *EthereumClientTestSuite) TestSafeInfoOverRPC() {
	service := s.newSafeService()

	info, err := service.Info(s.ctx, serviceOwner)
	s.Require().NoError(err)
	s.Equal(serviceSafeAddress, info.Address)
	s.False(info.IsDeployed)
}

func (s *EthereumClientTestSuite) TestSafeDeployOverRPC() {
	service := s.newSafeService()

	resp, err := service.Deploy(s.ctx, serviceOwner)
	s.Require().NoError(err)

	s.Require().Len(s.api.sent, 1)
	tx := s.api.sent[0]
	s.Equal(serviceProxyFactory, *tx.To())
	s.Equal("0x1688f0b9", hexutil.Encode(tx.Data()[:4]))

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(testChainID)), tx)
	s.Require().NoError(err)
	s.Equal(s.client.Address(), from)

	receipt := s.api.receipts[tx.Hash()]
	s.Require().NotNil(receipt)
	s.Equal(receipt.Logs[0].BlockHash.Hex(), resp.BlockHash)
	s.Equal(tx.Hash().Hex(), resp.TransactionHash)
	s.NotEqual(receipt.Logs[1].BlockHash.Hex(), resp.BlockHash)

	// The factory created the proxy.
	s.api.code[common.HexToAddress(serviceSafeAddress)] = hexutil.Bytes{0x60, 0x80}

	_, err = service.Deploy(s.ctx, serviceOwner)
	s.Require().ErrorIs(err, safe.ErrAlreadyExists)
	s.Len(s.api.sent, 1)
}

func (s *EthereumClientTestSuite) TestSafeExecOverRPC() {
	service := s.newSafeService()
	s.api.code[common.HexToAddress(serviceSafeAddress)] = hexutil.Bytes{0x60, 0x80}

	resp, err := service.Exec(s.ctx, serviceOwner, &model.SafeCall{
		To:             "0x00000000000000000000000000000000000000aa",
		Value:          "1",
		Operation:      1,
		SafeTxGas:      "0",
		BaseGas:        "0",
		GasPrice:       "0",
		GasToken:       "0x0000000000000000000000000000000000000000",
		RefundReceiver: "0x0000000000000000000000000000000000000000",
		Signatures:     hexutil.Bytes{0x01, 0x02},
	})
	s.Require().NoError(err)

	s.Require().Len(s.api.sent, 1)
	tx := s.api.sent[0]
	s.Equal(common.HexToAddress(serviceSafeAddress), *tx.To())
	s.Equal("0x6a761202", hexutil.Encode(tx.Data()[:4]))
	s.Equal(tx.Hash().Hex(), resp.TransactionHash)
	s.Equal(s.api.receipts[tx.Hash()].Logs[0].BlockHash.Hex(), resp.BlockHash)
}

func (s *EthereumClientTestSuite) TestSafeExecNotDeployedOverRPC() {
	service := s.newSafeService()

	_, err := service.Exec(s.ctx, serviceOwner, &model.SafeCall{})
	s.Require().ErrorIs(err, safe.ErrNotDeployed)
	s.Empty(s.api.sent)
}
