package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/AlexZinkM/safe-backend/internal/logging"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
	"github.com/rs/zerolog"
)

const (
	// gasLimitMargin is added to every gas estimate, in percent.
	gasLimitMargin = 20

	defaultPollInterval = 2 * time.Second
)

// EthereumClient is a JSON-RPC client that signs transactions with the
// backend key. It is safe for concurrent use.
type EthereumClient struct {
	client       *w3.Client
	chainID      *big.Int
	signer       types.Signer
	key          *ecdsa.PrivateKey
	address      common.Address
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewEthereumClient dials rpcURL and reads the chain id.
func NewEthereumClient(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey, pollInterval time.Duration, logger zerolog.Logger) (*EthereumClient, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	var chainID uint64
	if err := client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	id := new(big.Int).SetUint64(chainID)
	c := &EthereumClient{
		client:       client,
		chainID:      id,
		signer:       types.LatestSignerForChainID(id),
		key:          key,
		address:      crypto.PubkeyToAddress(key.PublicKey),
		pollInterval: pollInterval,
		logger:       logger,
	}
	logger.Info().
		Uint64("chainId", chainID).
		Str("signer", c.address.Hex()).
		Msg("connected to rpc")
	return c, nil
}

// Address returns the address of the backend signer.
func (c *EthereumClient) Address() common.Address {
	return c.address
}

// ChainID returns the chain id read at startup.
func (c *EthereumClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *EthereumClient) Close() error {
	return c.client.Close()
}

// Balance returns the balance of addr in wei.
func (c *EthereumClient) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := c.client.CallCtx(ctx, eth.Balance(addr, nil).Returns(&balance)); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (c *EthereumClient) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var code []byte
	if err := c.client.CallCtx(ctx, eth.Code(addr, nil).Returns(&code)); err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

func (c *EthereumClient) CallFunc(ctx context.Context, contract common.Address, fn *w3.Func, args []any, returns ...any) error {
	if err := c.client.CallCtx(ctx, eth.CallFunc(contract, fn, args...).Returns(returns...)); err != nil {
		return fmt.Errorf("call %s: %w", fn.Signature, err)
	}
	return nil
}

// Transact encodes a call of fn, estimates its gas, signs it with the
// backend key and submits it. The nonce is read from the latest block on
// every call, so concurrent calls may collide.
func (c *EthereumClient) Transact(ctx context.Context, contract common.Address, fn *w3.Func, args ...any) (common.Hash, error) {
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode %s: %w", fn.Signature, err)
	}

	var (
		nonce  uint64
		gas    uint64
		header *types.Header
	)
	msg := &w3types.Message{
		From:  c.address,
		To:    &contract,
		Input: input,
	}
	if err := c.client.CallCtx(ctx,
		eth.Nonce(c.address, nil).Returns(&nonce),
		eth.EstimateGas(msg, nil).Returns(&gas),
		eth.HeaderByNumber(nil).Returns(&header),
	); err != nil {
		return common.Hash{}, fmt.Errorf("prepare tx: %w", err)
	}
	gas += gas * gasLimitMargin / 100

	tx, err := c.newTx(ctx, header, nonce, gas, contract, input)
	if err != nil {
		return common.Hash{}, err
	}

	signedTx, err := types.SignTx(tx, c.signer, c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	var sent common.Hash
	if err := c.client.CallCtx(ctx, eth.SendTx(signedTx).Returns(&sent)); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	if sent != signedTx.Hash() {
		return common.Hash{}, fmt.Errorf("send tx: node returned hash %s, expected %s", sent.Hex(), signedTx.Hash().Hex())
	}

	c.logger.Debug().
		Str(logging.FieldTxHash, sent.Hex()).
		Str("to", contract.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Msg("sent transaction")
	return sent, nil
}

// newTx builds an EIP-1559 transaction, or a legacy one if the chain has no
// base fee.
func (c *EthereumClient) newTx(ctx context.Context, header *types.Header, nonce, gas uint64, to common.Address, input []byte) (*types.Transaction, error) {
	if header == nil || header.BaseFee == nil {
		var gasPrice *big.Int
		if err := c.client.CallCtx(ctx, eth.GasPrice().Returns(&gasPrice)); err != nil {
			return nil, fmt.Errorf("get gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Data:     input,
		}), nil
	}

	var gasTipCap *big.Int
	if err := c.client.CallCtx(ctx, eth.GasTipCap().Returns(&gasTipCap)); err != nil {
		return nil, fmt.Errorf("get gas tip cap: %w", err)
	}
	gasFeeCap := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	gasFeeCap.Add(gasFeeCap, gasTipCap)

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gas,
		To:        &to,
		Data:      input,
	}), nil
}

// WaitForReceipt polls for the receipt of txHash until it is available or
// ctx is done. Lookup errors are retried.
func (c *EthereumClient) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var receipt *types.Receipt
		err := c.client.CallCtx(ctx, eth.TxReceipt(txHash).Returns(&receipt))
		if err == nil && receipt != nil {
			c.logger.Debug().
				Str(logging.FieldTxHash, txHash.Hex()).
				Stringer("block", receipt.BlockNumber).
				Uint64("gasUsed", receipt.GasUsed).
				Uint64("status", receipt.Status).
				Msg("transaction mined")
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for receipt %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
