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

package componenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/httpserver"
	"github.com/chancerylabs/chancery/internal/rpcserver"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/require"
)

const (
	simChainID        = int64(1337)
	registryAddr      = "0xd1b4f3a559a4b0deb135b7a285c6477e6cdd0d30"
	orchestrationAddr = "0x9f6f1b4d1e9aa7e36fa21b0b69d885950311f2d5"
)

// The chain-side view of the deployed contract interfaces. These are declared
// independently of the bindings inside the process under test, because that is
// exactly the contract the two sides have to agree on over the wire.
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

type simDocument struct {
	digest types.Bytes32
	owner  string
}

type simRequest struct {
	documentType  string
	fulfilled     bool
	contentDigest types.Bytes32
}

// simReceipt is the receipt in the node's wire format. A nil pointer from the
// handler serializes to a JSON null, which is how a node reports an unmined
// transaction.
type simReceipt struct {
	BlockHash        ethtypes.HexBytes0xPrefix `json:"blockHash"`
	BlockNumber      *ethtypes.HexInteger      `json:"blockNumber"`
	TransactionHash  ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	TransactionIndex *ethtypes.HexInteger      `json:"transactionIndex"`
	From             *ethtypes.Address0xHex    `json:"from"`
	To               *ethtypes.Address0xHex    `json:"to"`
	GasUsed          *ethtypes.HexInteger      `json:"gasUsed"`
	Status           *ethtypes.HexInteger      `json:"status"`
	Logs             []*ethclient.ReceiptLog   `json:"logs"`
}

// simChain is a stateful in-memory stand-in for an Ethereum node with the
// document contracts deployed, served over a real JSON/RPC server. Every
// transaction is mined into its receipt immediately on submission, and the
// contract behavior matches what the Solidity does: identifiers are assigned
// from the chain's own sequence and announced by event.
type simChain struct {
	lock      sync.Mutex
	selectors map[string]*abi.Entry

	registeredSig ethtypes.HexBytes0xPrefix
	requestedSig  ethtypes.HexBytes0xPrefix

	nonces    map[string]uint64
	receipts  map[types.Bytes32]*simReceipt
	documents map[types.Bytes32]*simDocument
	owners    map[string][]types.Bytes32
	requests  map[types.Bytes32]*simRequest
	seq       int64
}

func newSimChain(t *testing.T) (sc *simChain, httpURL, wsURL string, done func()) {
	srv, err := rpcserver.NewServer(context.Background(), &rpcserver.Config{
		HTTP: rpcserver.HTTPEndpointConfig{Config: httpserver.Config{Port: confutil.P(0)}},
		WS:   rpcserver.WSEndpointConfig{Config: httpserver.Config{Port: confutil.P(0)}},
	})
	require.NoError(t, err)

	sc = &simChain{
		selectors: make(map[string]*abi.Entry),
		nonces:    make(map[string]uint64),
		receipts:  make(map[types.Bytes32]*simReceipt),
		documents: make(map[types.Bytes32]*simDocument),
		owners:    make(map[string][]types.Bytes32),
		requests:  make(map[types.Bytes32]*simRequest),
	}
	for _, e := range append(append(abi.ABI{}, registryABI...), orchestrationABI...) {
		if e.Type == abi.Function {
			sc.selectors[string(e.FunctionSelectorBytes())] = e
		}
	}
	sc.registeredSig, err = registryABI.Events()["DocumentRegistered"].SignatureHash()
	require.NoError(t, err)
	sc.requestedSig, err = orchestrationABI.Events()["DocumentRequested"].SignatureHash()
	require.NoError(t, err)

	srv.Register(rpcserver.NewRPCModule("eth").
		Add("eth_chainId", rpcserver.RPCMethod0(sc.chainID)).
		Add("eth_gasPrice", rpcserver.RPCMethod0(sc.gasPrice)).
		Add("eth_getTransactionCount", rpcserver.RPCMethod2(sc.getTransactionCount)).
		Add("eth_call", rpcserver.RPCMethod2(sc.call)).
		Add("eth_sendRawTransaction", rpcserver.RPCMethod1(sc.sendRawTransaction)).
		Add("eth_getTransactionReceipt", rpcserver.RPCMethod1(sc.getTransactionReceipt)),
	)

	require.NoError(t, srv.Start())
	return sc,
		fmt.Sprintf("http://%s", srv.HTTPAddr()),
		fmt.Sprintf("ws://%s", srv.WSAddr()),
		srv.Stop
}

// callInputs is the union of the decoded arguments across every function on
// both contracts. Each handler reads only the fields its function declares.
type callInputs struct {
	ContentDigest types.Bytes32          `json:"contentDigest"`
	DocumentType  string                 `json:"documentType"`
	Note          string                 `json:"note"`
	DocumentID    types.Bytes32          `json:"documentId"`
	RequestID     types.Bytes32          `json:"requestId"`
	Content       string                 `json:"content"`
	Requirements  string                 `json:"requirements"`
	Owner         *ethtypes.Address0xHex `json:"owner"`
}

func (sc *simChain) decodeInputs(callData []byte) (*abi.Entry, *callInputs, error) {
	if len(callData) < 4 {
		return nil, nil, fmt.Errorf("no function selector")
	}
	fn := sc.selectors[string(callData[0:4])]
	if fn == nil {
		return nil, nil, fmt.Errorf("unknown function selector %x", callData[0:4])
	}
	cv, err := fn.DecodeCallData(callData)
	if err != nil {
		return nil, nil, err
	}
	jsonData, err := types.StandardABISerializer().SerializeJSON(cv)
	if err != nil {
		return nil, nil, err
	}
	inputs := &callInputs{}
	if err := json.Unmarshal(jsonData, inputs); err != nil {
		return nil, nil, err
	}
	return fn, inputs, nil
}

// nextID mimics a contract assigning identifiers from its own storage
// sequence, unrelated to anything the caller supplied.
func (sc *simChain) nextID() types.Bytes32 {
	sc.seq++
	return types.Bytes32Keccak([]byte(fmt.Sprintf("chain.sequence.%d", sc.seq)))
}

func (sc *simChain) requestFulfilled(reqID types.Bytes32) bool {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	req := sc.requests[reqID]
	return req != nil && req.fulfilled
}

func (sc *simChain) chainID(ctx context.Context) (ethtypes.HexUint64, error) {
	return ethtypes.HexUint64(simChainID), nil
}

func (sc *simChain) gasPrice(ctx context.Context) (ethtypes.HexInteger, error) {
	return *ethtypes.NewHexInteger64(1000000000), nil
}

func (sc *simChain) getTransactionCount(ctx context.Context, addr ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return ethtypes.HexUint64(sc.nonces[addr.String()]), nil
}

func (sc *simChain) sendRawTransaction(ctx context.Context, rawTX types.HexBytes) (types.HexBytes, error) {
	from, tx, err := ethsigner.RecoverRawTransaction(ctx, ethtypes.HexBytes0xPrefix(rawTX), simChainID)
	if err != nil {
		return nil, err
	}
	fn, inputs, err := sc.decodeInputs(tx.Data)
	if err != nil {
		return nil, err
	}

	sc.lock.Lock()
	defer sc.lock.Unlock()

	txHash := types.Bytes32Keccak(rawTX)
	receipt := &simReceipt{
		BlockHash:        types.RandBytes(32),
		BlockNumber:      ethtypes.NewHexInteger64(int64(len(sc.receipts)) + 1),
		TransactionHash:  txHash.Bytes(),
		TransactionIndex: ethtypes.NewHexInteger64(0),
		From:             from,
		To:               tx.To,
		GasUsed:          ethtypes.NewHexInteger64(40000),
		Status:           ethtypes.NewHexInteger64(1),
	}

	sender := from.String()
	switch fn.Name {
	case "registerDocument":
		docID := sc.nextID()
		sc.documents[docID] = &simDocument{digest: inputs.ContentDigest, owner: sender}
		sc.owners[sender] = append(sc.owners[sender], docID)
		receipt.Logs = []*ethclient.ReceiptLog{eventLog(tx.To, sc.registeredSig, docID, from)}
	case "requestDocumentGeneration":
		reqID := sc.nextID()
		sc.requests[reqID] = &simRequest{documentType: inputs.DocumentType}
		receipt.Logs = []*ethclient.ReceiptLog{eventLog(tx.To, sc.requestedSig, reqID, from)}
	case "fulfillDocumentRequest":
		req := sc.requests[inputs.RequestID]
		if req == nil {
			return nil, fmt.Errorf("execution reverted: unknown request %s", inputs.RequestID)
		}
		req.fulfilled = true
		req.contentDigest = types.Bytes32Keccak([]byte(inputs.Content))
	default:
		return nil, fmt.Errorf("function %s is not a transaction", fn.Name)
	}

	sc.nonces[sender]++
	sc.receipts[txHash] = receipt
	return txHash.Bytes(), nil
}

func (sc *simChain) getTransactionReceipt(ctx context.Context, txHash types.Bytes32) (*simReceipt, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return sc.receipts[txHash], nil
}

func (sc *simChain) call(ctx context.Context, tx ethsigner.Transaction, block string) (types.HexBytes, error) {
	fn, inputs, err := sc.decodeInputs(tx.Data)
	if err != nil {
		return nil, err
	}

	sc.lock.Lock()
	defer sc.lock.Unlock()

	var output any
	switch fn.Name {
	case "verifyDocument":
		doc := sc.documents[inputs.DocumentID]
		output = map[string]any{"verified": doc != nil && doc.digest == inputs.ContentDigest}
	case "getDocumentsByOwner":
		docIDs := sc.owners[inputs.Owner.String()]
		if docIDs == nil {
			docIDs = []types.Bytes32{}
		}
		output = map[string]any{"documentIds": docIDs}
	default:
		return nil, fmt.Errorf("function %s is not a query", fn.Name)
	}
	outputJSON, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return fn.Outputs.EncodeABIDataJSON(outputJSON)
}

// eventLog packs the identifier and actor into indexed topics the way the
// EVM lays out an emitted event.
func eventLog(contract *ethtypes.Address0xHex, sig ethtypes.HexBytes0xPrefix, id types.Bytes32, actor *ethtypes.Address0xHex) *ethclient.ReceiptLog {
	var actorTopic [32]byte
	copy(actorTopic[12:], actor[:])
	return &ethclient.ReceiptLog{
		Address: contract,
		Topics:  []ethtypes.HexBytes0xPrefix{sig, id.Bytes(), actorTopic[:]},
	}
}
