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

	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// The on-chain interfaces are fixed and versioned, so the ABIs are bundled
// rather than configured. Function names, argument order and types must match
// the deployed contracts exactly - a mismatch surfaces as a call data
// encoding failure at build time, before anything is signed.

var registryABI = abi.ABI{
	{
		Type: abi.Function,
		Name: "registerDocument",
		Inputs: abi.ParameterArray{
			{Name: "contentDigest", Type: "bytes32"},
			{Name: "documentType", Type: "string"},
			{Name: "note", Type: "string"},
		},
		Outputs: abi.ParameterArray{
			{Name: "documentId", Type: "bytes32"},
		},
	},
	{
		Type: abi.Function,
		Name: "verifyDocument",
		Inputs: abi.ParameterArray{
			{Name: "documentId", Type: "bytes32"},
			{Name: "contentDigest", Type: "bytes32"},
		},
		Outputs: abi.ParameterArray{
			{Name: "verified", Type: "bool"},
		},
	},
	{
		Type: abi.Function,
		Name: "getDocumentsByOwner",
		Inputs: abi.ParameterArray{
			{Name: "owner", Type: "address"},
		},
		Outputs: abi.ParameterArray{
			{Name: "documentIds", Type: "bytes32[]"},
		},
	},
	{
		Type: abi.Event,
		Name: "DocumentRegistered",
		Inputs: abi.ParameterArray{
			{Name: "documentId", Type: "bytes32", Indexed: true},
			{Name: "owner", Type: "address", Indexed: true},
			{Name: "contentDigest", Type: "bytes32"},
			{Name: "documentType", Type: "string"},
		},
	},
}

var orchestrationABI = abi.ABI{
	{
		Type: abi.Function,
		Name: "requestDocumentGeneration",
		Inputs: abi.ParameterArray{
			{Name: "documentType", Type: "string"},
			{Name: "requirements", Type: "string"},
		},
		Outputs: abi.ParameterArray{
			{Name: "requestId", Type: "bytes32"},
		},
	},
	{
		Type: abi.Function,
		Name: "fulfillDocumentRequest",
		Inputs: abi.ParameterArray{
			{Name: "requestId", Type: "bytes32"},
			{Name: "content", Type: "string"},
			{Name: "note", Type: "string"},
		},
	},
	{
		Type: abi.Event,
		Name: "DocumentRequested",
		Inputs: abi.ParameterArray{
			{Name: "requestId", Type: "bytes32", Indexed: true},
			{Name: "requester", Type: "address", Indexed: true},
			{Name: "documentType", Type: "string"},
		},
	},
}

var documentRegisteredEvent = mustEvent(registryABI, "DocumentRegistered")
var documentRequestedEvent = mustEvent(orchestrationABI, "DocumentRequested")

func mustEvent(a abi.ABI, eventName string) *abi.Entry {
	ev := a.Events()[eventName]
	if ev == nil {
		panic("missing event " + eventName)
	}
	return ev
}

type registryContract struct {
	addr                *ethtypes.Address0xHex
	registerDocument    ethclient.ABIFunctionClient
	verifyDocument      ethclient.ABIFunctionClient
	getDocumentsByOwner ethclient.ABIFunctionClient
}

type orchestrationContract struct {
	addr                      *ethtypes.Address0xHex
	requestDocumentGeneration ethclient.ABIFunctionClient
	fulfillDocumentRequest    ethclient.ABIFunctionClient
}

func bindRegistry(ctx context.Context, ec ethclient.EthClient, addrStr string) (*registryContract, error) {
	addr, err := ethtypes.NewAddress(addrStr)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgNotaryContractAddrInvalid, addrStr, "registry")
	}
	rc := &registryContract{addr: addr}
	abic, err := ec.ABI(ctx, registryABI)
	if err == nil {
		rc.registerDocument, err = abic.Function(ctx, "registerDocument")
	}
	if err == nil {
		rc.verifyDocument, err = abic.Function(ctx, "verifyDocument")
	}
	if err == nil {
		rc.getDocumentsByOwner, err = abic.Function(ctx, "getDocumentsByOwner")
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func bindOrchestration(ctx context.Context, ec ethclient.EthClient, addrStr string) (*orchestrationContract, error) {
	addr, err := ethtypes.NewAddress(addrStr)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgNotaryContractAddrInvalid, addrStr, "orchestration")
	}
	oc := &orchestrationContract{addr: addr}
	abic, err := ec.ABI(ctx, orchestrationABI)
	if err == nil {
		oc.requestDocumentGeneration, err = abic.Function(ctx, "requestDocumentGeneration")
	}
	if err == nil {
		oc.fulfillDocumentRequest, err = abic.Function(ctx, "fulfillDocumentRequest")
	}
	if err != nil {
		return nil, err
	}
	return oc, nil
}
