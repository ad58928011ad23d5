package safe

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const threshold = 1

// EncodeInitializer returns the calldata of Safe.setup for a wallet with
// owner as its only owner and no payment or setup module.
func EncodeInitializer(owner common.Address, tpl TemplateConfig) ([]byte, error) {
	initializer, err := funcSetup.EncodeArgs(
		[]common.Address{owner}, // owners
		big.NewInt(threshold),   // threshold
		common.Address{},        // to
		[]byte{},                // data
		tpl.FallbackHandler,     // fallbackHandler
		common.Address{},        // paymentToken
		big.NewInt(0),           // payment
		common.Address{},        // paymentReceiver
	)
	if err != nil {
		return nil, badParams("initializer", err)
	}
	return initializer, nil
}
