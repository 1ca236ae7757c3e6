// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package msgs

import (
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const chanceryPrefix = "CH01"

var registered = false
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix(chanceryPrefix, "Chancery Document Notary")
		registered = true
	}
	if !strings.HasPrefix(key, chanceryPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", chanceryPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (

	// Types CH0100XX
	MsgTypesInvalidHex        = ffe("CH010000", "Invalid hex: %s")
	MsgTypesInvalidBytes32Len = ffe("CH010001", "Invalid length for bytes32, expected=%d actual=%d")
	MsgTypesInvalidAddress    = ffe("CH010002", "Invalid Ethereum address: %s")
	MsgTypesUnmarshalNil      = ffe("CH010003", "UnmarshalJSON on nil pointer")
	MsgTypesTimeParseFail     = ffe("CH010004", "Cannot parse time as RFC3339, Unix, or UnixNano: '%s'")

	// Ethereum client CH0101XX
	MsgEthClientHTTPURLMissing          = ffe("CH010100", "HTTP URL missing in configuration")
	MsgEthClientInvalidHTTPURL          = ffe("CH010101", "Invalid HTTP URL: %s")
	MsgEthClientInvalidWebSocketURL     = ffe("CH010102", "Invalid WebSocket URL: %s")
	MsgEthClientChainIDFailed           = ffe("CH010103", "Failed to query chain ID")
	MsgEthClientChainIDMismatch         = ffe("CH010104", "ChainID mismatch between HTTP and WebSocket JSON/RPC connections http=%d ws=%d")
	MsgEthClientMissingFrom             = ffe("CH010105", "Signer (from) missing")
	MsgEthClientMissingTo               = ffe("CH010106", "To missing")
	MsgEthClientMissingInput            = ffe("CH010107", "Input missing")
	MsgEthClientMissingOutput           = ffe("CH010108", "Output missing")
	MsgEthClientInvalidInput            = ffe("CH010109", "Unable to convert to ABI function input (func=%s)")
	MsgEthClientInvalidTXVersion        = ffe("CH010110", "Invalid TX Version (%s)")
	MsgEthClientABIJson                 = ffe("CH010111", "JSON ABI parsing failed")
	MsgEthClientFunctionNotFound        = ffe("CH010112", "Function %q not found on ABI")
	MsgEthClientCallReverted            = ffe("CH010113", "Reverted: %s")
	MsgEthClientReceiptNotAvailable     = ffe("CH010114", "Receipt not available for transaction '%s'")
	MsgEthClientReturnValueNotDecoded   = ffe("CH010115", "Error return value for custom error: %s")
	MsgEthClientReturnValueNotAvailable = ffe("CH010116", "Error return value unavailable")

	// JSON/RPC server CH0102XX
	MsgJSONRPCMissingRequestID    = ffe("CH010200", "Invalid JSON/RPC: missing id")
	MsgJSONRPCUnsupportedMethod   = ffe("CH010201", "method not supported %s")
	MsgJSONRPCIncorrectParamCount = ffe("CH010202", "method %s requires %d params (supplied=%d)")
	MsgJSONRPCInvalidParam        = ffe("CH010203", "method %s parameter %d invalid: %s")
	MsgJSONRPCResultSerialization = ffe("CH010204", "method %s result serialization failed: %s")
	MsgJSONRPCInvalidRequest      = ffe("CH010205", "Invalid JSON/RPC request data")

	// Signer CH0103XX
	MsgSignerMissingKeyData    = ffe("CH010300", "Signing key missing in configuration (set key, keyFile or generate)")
	MsgSignerBadKeyData        = ffe("CH010301", "Invalid signing key (expected 32 bytes of hex)")
	MsgSignerBadKeyFile        = ffe("CH010302", "Signing key file %q could not be read or parsed")
	MsgSignerSignatureEncoding = ffe("CH010303", "Invalid signature data")

	// Notary CH0104XX
	MsgNotaryIdentifierBadHex      = ffe("CH010400", "Document identifier %q is full bytes32 width but is not valid hex")
	MsgNotaryContractAddrInvalid   = ffe("CH010401", "Address %q invalid for %s contract")
	MsgNotaryInsufficientFunds     = ffe("CH010402", "Insufficient funds in signing account %s to submit transaction")
	MsgNotarySubmissionRejected    = ffe("CH010403", "Transaction rejected by node: %s")
	MsgNotaryExecutionReverted     = ffe("CH010404", "Transaction %s reverted on chain: %s")
	MsgNotaryConfirmationTimeout   = ffe("CH010405", "Transaction %s unconfirmed after %s: status unknown, it may still confirm")
	MsgNotaryEventNotFound         = ffe("CH010406", "No %s event from contract %s in receipt for transaction %s: returned identifier is locally generated and unconfirmed")
	MsgNotaryBadOwnerAddress       = ffe("CH010407", "Owner %q is not a valid Ethereum address")
	MsgNotaryContentRequired       = ffe("CH010408", "Document content must not be empty")
	MsgNotaryIdentifierRequired    = ffe("CH010409", "Document identifier must not be empty")

	// Config and lifecycle CH0105XX
	MsgConfigFileMissing             = ffe("CH010500", "Config file not found at path: %s")
	MsgConfigFileReadError           = ffe("CH010501", "Failed to read config file %s: %s")
	MsgConfigFileParseError          = ffe("CH010502", "Failed to parse config file: %s")
	MsgComponentWalletInitError      = ffe("CH010503", "Wallet initialization failed")
	MsgComponentEthClientInitError   = ffe("CH010504", "Ethereum client initialization failed")
	MsgComponentNotaryInitError      = ffe("CH010505", "Notary initialization failed")
	MsgComponentRPCServerInitError   = ffe("CH010506", "JSON/RPC server initialization failed")
	MsgEntrypointMissingConfig       = ffe("CH010507", "Usage: chancery <configfile.yaml>")
	MsgContextCanceled               = ffe("CH010508", "Context canceled")
	MsgComponentRPCServerStartError  = ffe("CH010509", "JSON/RPC server failed to start")

	// TLS CH0106XX
	MsgTLSInvalidCAFile       = ffe("CH010600", "Invalid CA certificates file")
	MsgTLSConfigFailed        = ffe("CH010601", "Failed to initialize TLS configuration")
	MsgTLSInvalidKeyPairFiles = ffe("CH010602", "Invalid certificate and key pair files")

	// HTTP server CH0107XX
	MsgHTTPServerStartFailed        = ffe("CH010700", "Failed to start server on '%s'")
	MsgHTTPServerMissingPort        = ffe("CH010701", "HTTP server port must be specified for '%s'")
	MsgHTTPServerNoWSUpgradeSupport = ffe("CH010702", "HTTP server does not support WebSocket upgrade (%T)")
)
