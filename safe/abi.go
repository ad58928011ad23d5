package safe

import "github.com/lmittmann/w3"

// Safe v1.3.0 contract functions.
var (
	funcSetup = w3.MustNewFunc(
		"setup(address[],uint256,address,bytes,address,address,uint256,address)", "",
	)
	funcExecTransaction = w3.MustNewFunc(
		"execTransaction(address,uint256,bytes,uint8,uint256,uint256,uint256,address,address,bytes)", "bool",
	)
	funcProxyCreationCode = w3.MustNewFunc(
		"proxyCreationCode()", "bytes",
	)
	funcCreateProxyWithNonce = w3.MustNewFunc(
		"createProxyWithNonce(address,bytes,uint256)", "address",
	)
)
