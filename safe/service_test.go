package safe

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/AlexZinkM/safe-backend/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

var errChainDown = errors.New("connection refused")

type sentTx struct {
	contract common.Address
	fn       *w3.Func
	input    []byte
}

// fakeChain simulates a proxy factory. Deployments compute the proxy
// address from the raw call arguments, independently of address.go.
type fakeChain struct {
	mu sync.Mutex

	factory      common.Address
	creationCode []byte
	code         map[common.Address][]byte
	receipts     map[common.Hash]*types.Receipt
	sent         []sentTx

	calls int // every call that reaches the chain

	codeErr     error
	callErr     error
	transactErr error
	receiptErr  error
	// mutateReceipt is applied to each receipt before it is stored.
	mutateReceipt func(*types.Receipt)
	// beforeTransact runs with the lock held before a transaction is applied.
	beforeTransact func(c *fakeChain)
}

func newFakeChain(factory common.Address, creationCode []byte) *fakeChain {
	return &fakeChain{
		factory:      factory,
		creationCode: creationCode,
		code:         make(map[common.Address][]byte),
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func (c *fakeChain) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.codeErr != nil {
		return nil, c.codeErr
	}
	return c.code[addr], nil
}

func (c *fakeChain) CallFunc(_ context.Context, contract common.Address, fn *w3.Func, args []any, returns ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.callErr != nil {
		return c.callErr
	}
	if contract != c.factory || fn != funcProxyCreationCode {
		return errors.New("execution reverted")
	}
	if _, err := fn.EncodeArgs(args...); err != nil {
		return err
	}
	*returns[0].(*[]byte) = append([]byte(nil), c.creationCode...)
	return nil
}

func (c *fakeChain) Transact(_ context.Context, contract common.Address, fn *w3.Func, args ...any) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.transactErr != nil {
		return common.Hash{}, c.transactErr
	}
	if c.beforeTransact != nil {
		c.beforeTransact(c)
	}
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return common.Hash{}, err
	}
	c.sent = append(c.sent, sentTx{contract: contract, fn: fn, input: input})

	if fn == funcCreateProxyWithNonce {
		var (
			masterCopy  common.Address
			initializer []byte
			saltNonce   *big.Int
		)
		if err := fn.DecodeArgs(input, &masterCopy, &initializer, &saltNonce); err != nil {
			return common.Hash{}, err
		}
		salt := crypto.Keccak256Hash(
			crypto.Keccak256(initializer),
			common.LeftPadBytes(saltNonce.Bytes(), 32),
		)
		initCodeHash := crypto.Keccak256(c.creationCode, common.LeftPadBytes(masterCopy.Bytes(), 32))
		proxy := crypto.CreateAddress2(contract, salt, initCodeHash)
		if len(c.code[proxy]) > 0 {
			return common.Hash{}, errors.New("execution reverted: Create2 call failed")
		}
		c.code[proxy] = []byte{0x60, 0x80}
	}

	txHash := crypto.Keccak256Hash(input, big.NewInt(int64(len(c.sent))).Bytes())
	blockHash := crypto.Keccak256Hash(txHash.Bytes())
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: txHash,
		Logs: []*types.Log{
			{Address: contract, TxHash: txHash, BlockHash: blockHash},
			{Address: contract, TxHash: txHash, BlockHash: common.Hash{0x01}},
		},
		BlockHash: blockHash,
	}
	if c.mutateReceipt != nil {
		c.mutateReceipt(receipt)
	}
	c.receipts[txHash] = receipt
	return txHash, nil
}

func (c *fakeChain) WaitForReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.receiptErr != nil {
		return nil, c.receiptErr
	}
	r, ok := c.receipts[txHash]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

type ServiceTestSuite struct {
	suite.Suite

	ctx     context.Context
	chain   *fakeChain
	service *Service
}

func TestServiceTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.chain = newFakeChain(testProxyFactory, testCreationCode)
	s.service = NewService(s.chain, testTemplate, zerolog.Nop())
}

func (s *ServiceTestSuite) validCall() *model.SafeCall {
	return &model.SafeCall{
		To:             "0x00000000000000000000000000000000000000aa",
		Value:          "1000000000000000000",
		Data:           hexutil.MustDecode("0xa9059cbb"),
		Operation:      0,
		SafeTxGas:      "0",
		BaseGas:        "0",
		GasPrice:       "0",
		GasToken:       "0x0000000000000000000000000000000000000000",
		RefundReceiver: "0x0000000000000000000000000000000000000000",
		Signatures:     hexutil.MustDecode("0x0102"),
	}
}

func (s *ServiceTestSuite) deploy() *model.SafeResponse {
	s.T().Helper()
	resp, err := s.service.Deploy(s.ctx, testOwner.Hex())
	s.Require().NoError(err)
	return resp
}

func (s *ServiceTestSuite) TestInfoNotDeployed() {
	info, err := s.service.Info(s.ctx, testOwner.Hex())
	s.Require().NoError(err)
	s.Equal(testSafeAddress, info.Address)
	s.False(info.IsDeployed)
}

func (s *ServiceTestSuite) TestInfoIsDeterministic() {
	lower, err := s.service.Info(s.ctx, "0x8ba1f109551bd432803012645ac136ddd64dba72")
	s.Require().NoError(err)

	s.deploy()

	after, err := s.service.Info(s.ctx, testOwner.Hex())
	s.Require().NoError(err)
	s.Equal(lower.Address, after.Address)
	s.True(after.IsDeployed)
}

func (s *ServiceTestSuite) TestDistinctOwnersDistinctAddresses() {
	a, err := s.service.Info(s.ctx, testOwner.Hex())
	s.Require().NoError(err)
	b, err := s.service.Info(s.ctx, testFallback.Hex())
	s.Require().NoError(err)
	s.NotEqual(a.Address, b.Address)
}

func (s *ServiceTestSuite) TestDeploy() {
	resp := s.deploy()

	s.Require().Len(s.chain.sent, 1)
	tx := s.chain.sent[0]
	s.Equal(testProxyFactory, tx.contract)
	s.Equal("0x1688f0b9", hexutil.Encode(tx.input[:4]))

	receipt := s.chain.receipts[common.HexToHash(resp.TransactionHash)]
	s.Require().NotNil(receipt)
	s.Equal(receipt.Logs[0].BlockHash.Hex(), resp.BlockHash)
	s.Equal(receipt.Logs[0].TxHash.Hex(), resp.TransactionHash)

	s.True(len(s.chain.code[common.HexToAddress(testSafeAddress)]) > 0)
}

func (s *ServiceTestSuite) TestDeployTwice() {
	s.deploy()

	_, err := s.service.Deploy(s.ctx, testOwner.Hex())
	s.Require().ErrorIs(err, ErrAlreadyExists)
	s.Len(s.chain.sent, 1)
}

func (s *ServiceTestSuite) TestBadOwnerMakesNoChainCalls() {
	_, err := s.service.Info(s.ctx, "not-an-address")
	s.Require().ErrorIs(err, ErrBadAddress)

	_, err = s.service.Deploy(s.ctx, "0x1234")
	s.Require().ErrorIs(err, ErrBadAddress)

	_, err = s.service.Exec(s.ctx, "", s.validCall())
	s.Require().ErrorIs(err, ErrBadAddress)

	s.Zero(s.chain.calls)
}

func (s *ServiceTestSuite) TestExec() {
	s.deploy()

	resp, err := s.service.Exec(s.ctx, testOwner.Hex(), s.validCall())
	s.Require().NoError(err)
	s.NotEmpty(resp.TransactionHash)

	s.Require().Len(s.chain.sent, 2)
	tx := s.chain.sent[1]
	s.Equal(common.HexToAddress(testSafeAddress), tx.contract)
	s.Equal("0x6a761202", hexutil.Encode(tx.input[:4]))

	var (
		to, gasToken, refundReceiver     common.Address
		value, safeTxGas, baseGas, price *big.Int
		data, signatures                 []byte
		operation                        uint8
	)
	s.Require().NoError(funcExecTransaction.DecodeArgs(tx.input,
		&to, &value, &data, &operation, &safeTxGas, &baseGas, &price, &gasToken, &refundReceiver, &signatures,
	))
	s.Equal(common.HexToAddress("0xaa"), to)
	s.Equal("1000000000000000000", value.String())
	s.Equal([]byte{0xa9, 0x05, 0x9c, 0xbb}, data)
	s.Equal(uint8(0), operation)
	s.Equal([]byte{0x01, 0x02}, signatures)
}

func (s *ServiceTestSuite) TestExecDelegateCallEmptyData() {
	s.deploy()

	call := s.validCall()
	call.Operation = 1
	call.Data = nil
	call.Signatures = nil

	_, err := s.service.Exec(s.ctx, testOwner.Hex(), call)
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) TestExecNotDeployedBeforeValidation() {
	call := s.validCall()
	call.Operation = 7
	call.To = "garbage"

	_, err := s.service.Exec(s.ctx, testOwner.Hex(), call)
	s.Require().ErrorIs(err, ErrNotDeployed)
	s.Empty(s.chain.sent)
}

func (s *ServiceTestSuite) TestExecValidation() {
	s.deploy()

	tests := []struct {
		name   string
		mutate func(*model.SafeCall)
		kind   error
		field  string
	}{
		{"operation", func(c *model.SafeCall) { c.Operation = 2 }, ErrBadParams, "operation"},
		{"operation before to", func(c *model.SafeCall) {
			c.Operation = 2
			c.To = "x"
		}, ErrBadParams, "operation"},
		{"to", func(c *model.SafeCall) { c.To = "0xzz" }, ErrBadAddress, "to"},
		{"value negative", func(c *model.SafeCall) { c.Value = "-1" }, ErrBadParams, "value"},
		{"value empty", func(c *model.SafeCall) { c.Value = "" }, ErrBadParams, "value"},
		{"value plus sign", func(c *model.SafeCall) { c.Value = "+5" }, ErrBadParams, "value"},
		{"value negative zero", func(c *model.SafeCall) { c.Value = "-0" }, ErrBadParams, "value"},
		{"baseGas plus sign", func(c *model.SafeCall) { c.BaseGas = "+0" }, ErrBadParams, "baseGas"},
		{"value overflow", func(c *model.SafeCall) {
			c.Value = new(big.Int).Lsh(big.NewInt(1), 256).String()
		}, ErrBadParams, "value"},
		{"safeTxGas", func(c *model.SafeCall) { c.SafeTxGas = "1.5" }, ErrBadParams, "safeTxGas"},
		{"baseGas", func(c *model.SafeCall) { c.BaseGas = "abc" }, ErrBadParams, "baseGas"},
		{"gasPrice", func(c *model.SafeCall) { c.GasPrice = "0x10" }, ErrBadParams, "gasPrice"},
		{"gasToken", func(c *model.SafeCall) { c.GasToken = "0x01" }, ErrBadAddress, "gasToken"},
		{"refundReceiver", func(c *model.SafeCall) { c.RefundReceiver = "" }, ErrBadAddress, "refundReceiver"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			call := s.validCall()
			tt.mutate(call)

			_, err := s.service.Exec(s.ctx, testOwner.Hex(), call)
			s.Require().ErrorIs(err, tt.kind)
			s.Contains(err.Error(), tt.field)
		})
	}
	s.Len(s.chain.sent, 1)
}

func (s *ServiceTestSuite) TestExecMaxUint256() {
	s.deploy()

	call := s.validCall()
	call.Value = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String()

	_, err := s.service.Exec(s.ctx, testOwner.Hex(), call)
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) TestRPCErrors() {
	s.Run("getCode", func() {
		s.chain.codeErr = errChainDown
		defer func() { s.chain.codeErr = nil }()

		_, err := s.service.Info(s.ctx, testOwner.Hex())
		s.Require().ErrorIs(err, ErrRPC)
		s.Require().ErrorIs(err, errChainDown)
	})

	s.Run("proxyCreationCode", func() {
		s.chain.callErr = errChainDown
		defer func() { s.chain.callErr = nil }()

		_, err := s.service.Deploy(s.ctx, testOwner.Hex())
		s.Require().ErrorIs(err, ErrRPC)
	})

	s.Run("transact", func() {
		s.chain.transactErr = errChainDown
		defer func() { s.chain.transactErr = nil }()

		_, err := s.service.Deploy(s.ctx, testOwner.Hex())
		s.Require().ErrorIs(err, ErrRPC)
	})

	s.Run("receipt", func() {
		s.chain.receiptErr = context.DeadlineExceeded
		defer func() { s.chain.receiptErr = nil }()

		_, err := s.service.Deploy(s.ctx, testOwner.Hex())
		s.Require().ErrorIs(err, ErrRPC)
		s.Require().ErrorIs(err, context.DeadlineExceeded)
	})
}

func (s *ServiceTestSuite) TestRevertedReceipt() {
	s.chain.mutateReceipt = func(r *types.Receipt) { r.Status = types.ReceiptStatusFailed }

	_, err := s.service.Deploy(s.ctx, testOwner.Hex())
	s.Require().ErrorIs(err, ErrRPC)
	s.Contains(err.Error(), "reverted")
}

func (s *ServiceTestSuite) TestReceiptWithoutLogs() {
	s.chain.mutateReceipt = func(r *types.Receipt) { r.Logs = nil }

	_, err := s.service.Deploy(s.ctx, testOwner.Hex())
	s.Require().ErrorIs(err, ErrRPC)
	s.Contains(err.Error(), "no logs")
}

func (s *ServiceTestSuite) TestConcurrentFirstDeployLosesAtChainLevel() {
	// Another deployment lands between the pre-check and our submission.
	s.chain.beforeTransact = func(c *fakeChain) {
		c.code[common.HexToAddress(testSafeAddress)] = []byte{0x60}
	}

	_, err := s.service.Deploy(s.ctx, testOwner.Hex())
	s.Require().ErrorIs(err, ErrRPC)
	s.Require().NotErrorIs(err, ErrAlreadyExists)
}
