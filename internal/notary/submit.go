/*
 * Copyright © 2024 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package notary

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
	"time"

	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// factoredGasPrice multiplies the node's suggested gas price by the
// configured factor, rounding up so a factor greater than 1.0 can never
// round back down to the suggestion on small prices.
func factoredGasPrice(gasPrice *ethtypes.HexInteger, factor float64) *ethtypes.HexInteger {
	factorPct := big.NewInt(int64(math.Round(factor * 100)))
	priced := new(big.Int).Mul(gasPrice.BigInt(), factorPct)
	priced.Add(priced, big.NewInt(99))
	priced.Div(priced, big.NewInt(100))
	return ethtypes.NewHexInteger(priced)
}

// submit prices, signs and submits a single transaction for the notary
// account. The lock serializes all submissions from this process, so the
// pending-block nonce fetched during signing cannot collide with another
// in-flight transaction of our own. A submission failure returns without
// any retry - resubmitting a signed payload risks a double spend if the
// first send landed despite the error.
func (n *notary) submit(ctx context.Context, req ethclient.ABIFunctionRequestBuilder) (*types.Bytes32, error) {
	n.submitLock.Lock()
	defer n.submitLock.Unlock()

	gasPrice, err := n.ec.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	priced := factoredGasPrice(gasPrice, n.gasPriceFactor)
	tx := req.TX()
	if n.txVersion == ethclient.EIP1559 {
		tx.MaxFeePerGas = priced
		tx.MaxPriorityFeePerGas = priced
	} else {
		tx.GasPrice = priced
	}
	req.TXVersion(n.txVersion)
	if n.gasLimit > 0 {
		req.GasLimit(uint64(n.gasLimit))
	}

	txHash, err := req.SignAndSend()
	if err != nil {
		return nil, n.mapSubmitError(ctx, err)
	}
	log.L(ctx).Infof("Transaction %s submitted (signer=%s)", txHash, n.signerAddr)
	return txHash, nil
}

func (n *notary) mapSubmitError(ctx context.Context, err error) error {
	switch reason := ethclient.MapError(err); reason {
	case ethclient.ErrorReasonInsufficientFunds:
		return i18n.WrapError(ctx, err, msgs.MsgNotaryInsufficientFunds, n.signerAddr)
	case "":
		// Unclassified - likely connectivity rather than rejection, so the
		// original error is the most useful thing to surface
		return err
	default:
		return i18n.WrapError(ctx, err, msgs.MsgNotarySubmissionRejected, reason)
	}
}

// waitForReceipt polls until the transaction is mined, then checks the
// execution outcome. A mined transaction either succeeded or reverted.
// On timeout the status is simply unknown, and an unknown transaction is
// never reported as failed - it may still confirm after we stop watching.
func (n *notary) waitForReceipt(ctx context.Context, txHash types.Bytes32) (*ethclient.TransactionReceiptResponse, error) {
	start := time.Now()
	attempt := 0
	for {
		receipt, err := n.ec.GetTransactionReceipt(ctx, txHash.String())
		if err == nil {
			if !receipt.Success {
				return receipt, i18n.NewError(ctx, msgs.MsgNotaryExecutionReverted, txHash, revertMessage(receipt))
			}
			log.L(ctx).Infof("Transaction %s confirmed in block %s", txHash, receipt.BlockNumber.Int())
			return receipt, nil
		}
		log.L(ctx).Debugf("Receipt not yet available for %s: %s", txHash, err)
		attempt++
		if time.Since(start) >= n.confirmationTimeout {
			return nil, i18n.NewError(ctx, msgs.MsgNotaryConfirmationTimeout, txHash, n.confirmationTimeout)
		}
		if waitErr := n.receiptRetry.WaitDelay(ctx, attempt); waitErr != nil {
			// Abandoning the wait leaves the transaction status unknown,
			// which is the same outcome as running out the clock
			return nil, i18n.NewError(ctx, msgs.MsgNotaryConfirmationTimeout, txHash, n.confirmationTimeout)
		}
	}
}

func revertMessage(receipt *ethclient.TransactionReceiptResponse) string {
	if receipt.ExtraInfo != nil {
		var extra struct {
			ErrorMessage *string `json:"errorMessage"`
		}
		if err := json.Unmarshal(receipt.ExtraInfo.Bytes(), &extra); err == nil &&
			extra.ErrorMessage != nil && *extra.ErrorMessage != "" {
			return *extra.ErrorMessage
		}
	}
	return "unknown"
}
