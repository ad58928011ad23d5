// Package safetest provides an in-memory implementation of safe.Safe.
package safetest

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/AlexZinkM/safe-backend/internal/model"
	"github.com/AlexZinkM/safe-backend/safe"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fake derives addresses exactly like safe.Service but keeps deployment
// state in memory. It follows the same validation order as the real
// service. Set Err to make every call that reaches the "chain" fail with it.
type Fake struct {
	Template     safe.TemplateConfig
	CreationCode []byte
	Err          error

	mu       sync.Mutex
	deployed map[common.Address]bool
	txCount  uint64
	calls    []model.SafeCall
}

var _ safe.Safe = (*Fake)(nil)

// NewFake returns a Fake with no deployed wallets.
func NewFake(tpl safe.TemplateConfig, creationCode []byte) *Fake {
	return &Fake{
		Template:     tpl,
		CreationCode: creationCode,
		deployed:     make(map[common.Address]bool),
	}
}

// Calls returns the transactions accepted by Exec.
func (f *Fake) Calls() []model.SafeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SafeCall(nil), f.calls...)
}

func (f *Fake) address(ownerAddress string) (common.Address, error) {
	owner, err := safe.ParseAddress("owner", ownerAddress)
	if err != nil {
		return common.Address{}, err
	}
	initializer, err := safe.EncodeInitializer(owner, f.Template)
	if err != nil {
		return common.Address{}, err
	}
	salt, err := safe.SaltFor(initializer, f.Template.SaltNonce)
	if err != nil {
		return common.Address{}, err
	}
	initCodeHash, err := safe.InitCodeHash(f.CreationCode, f.Template.MasterCopy)
	if err != nil {
		return common.Address{}, err
	}
	if f.Err != nil {
		return common.Address{}, &safe.Error{Kind: safe.KindRPC, Err: f.Err}
	}
	return safe.Create2Address(f.Template.ProxyFactory, salt, initCodeHash), nil
}

// nextResponse must be called with f.mu held.
func (f *Fake) nextResponse() *model.SafeResponse {
	f.txCount++
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], f.txCount)
	return &model.SafeResponse{
		BlockHash:       crypto.Keccak256Hash([]byte("block"), n[:]).Hex(),
		TransactionHash: crypto.Keccak256Hash([]byte("tx"), n[:]).Hex(),
	}
}

func (f *Fake) Info(_ context.Context, ownerAddress string) (*model.SafeInfo, error) {
	addr, err := f.address(ownerAddress)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.SafeInfo{Address: addr.Hex(), IsDeployed: f.deployed[addr]}, nil
}

func (f *Fake) Deploy(_ context.Context, ownerAddress string) (*model.SafeResponse, error) {
	addr, err := f.address(ownerAddress)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deployed[addr] {
		return nil, safe.ErrAlreadyExists
	}
	f.deployed[addr] = true
	return f.nextResponse(), nil
}

func (f *Fake) Exec(_ context.Context, ownerAddress string, call *model.SafeCall) (*model.SafeResponse, error) {
	addr, err := f.address(ownerAddress)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.deployed[addr] {
		return nil, safe.ErrNotDeployed
	}
	if _, err := safe.ParseCall(call); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, *call)
	return f.nextResponse(), nil
}
