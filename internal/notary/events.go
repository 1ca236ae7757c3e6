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
	"bytes"
	"context"

	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// ExtractEventB32 scans the logs of a transaction receipt for the first event
// emitted by contractAddr that matches eventDef, and returns the value of the
// named parameter. The parameter must be an indexed bytes32 field, so its
// value is carried whole in the topic list rather than ABI-packed in the data.
//
// Returns false when no matching log is found.
func ExtractEventB32(ctx context.Context, receipt *ethclient.TransactionReceiptResponse, contractAddr *ethtypes.Address0xHex, eventDef *abi.Entry, fieldName string) (*types.Bytes32, bool) {
	sigHash, err := eventDef.SignatureHash()
	if err != nil {
		log.L(ctx).Errorf("Invalid event definition %s: %s", eventDef.Name, err)
		return nil, false
	}

	// Indexed parameters map to topics in declaration order, after the
	// signature hash in topic zero.
	topicIndex := 0
	found := false
	for _, input := range eventDef.Inputs {
		if input.Indexed {
			topicIndex++
			if input.Name == fieldName {
				found = true
				break
			}
		}
	}
	if !found {
		log.L(ctx).Errorf("Field %s is not an indexed parameter of event %s", fieldName, eventDef.Name)
		return nil, false
	}

	for _, l := range receipt.Logs {
		if l.Address == nil || *l.Address != *contractAddr {
			continue
		}
		if len(l.Topics) <= topicIndex || !bytes.Equal(l.Topics[0], sigHash) {
			continue
		}
		id := types.NewBytes32FromSlice(l.Topics[topicIndex])
		return &id, true
	}
	return nil, false
}
