package model

import "github.com/ethereum/go-ethereum/common/hexutil"

// SafeInfo represents response for GET /v1/safe/{address}
type SafeInfo struct {
	Address    string `json:"address"`
	IsDeployed bool   `json:"isDeployed"`
}

// SafeResponse represents response for POST and PUT /v1/safe/{address}
type SafeResponse struct {
	BlockHash       string `json:"blockHash"`
	TransactionHash string `json:"transactionHash"`
}

// SafeCall represents request for PUT /v1/safe/{address}.
// Numeric fields are decimal strings, addresses are 0x-prefixed hex.
type SafeCall struct {
	To             string        `json:"to"`
	Value          string        `json:"value"`
	Data           hexutil.Bytes `json:"data" swaggertype:"string" example:"0x"`
	Operation      uint8         `json:"operation"` // 0 = Call, 1 = DelegateCall
	SafeTxGas      string        `json:"safeTxGas"`
	BaseGas        string        `json:"baseGas"`
	GasPrice       string        `json:"gasPrice"`
	GasToken       string        `json:"gasToken"`
	RefundReceiver string        `json:"refundReceiver"`
	Signatures     hexutil.Bytes `json:"signatures" swaggertype:"string" example:"0x"`
}
