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
	"fmt"
	"sync"
	"time"

	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/internal/retry"
	"github.com/chancerylabs/chancery/internal/rpcserver"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// The wallet maps every identifier to the notary's single signing key, so the
// identifier only matters for logging. Using a stable name keeps the signing
// audit trail greppable.
const notaryKeyIdentifier = "notary"

// Notary is the document lifecycle engine. All operations return a result
// rather than an error - failures are reported in-band with Success false and
// a human readable message, because every caller (the JSON/RPC surface
// included) wants the structured outcome either way.
type Notary interface {
	RegisterDocument(ctx context.Context, req *RegisterRequest) *OperationResult
	VerifyDocument(ctx context.Context, req *VerifyRequest) *OperationResult
	RequestGeneration(ctx context.Context, req *GenerationRequest) *OperationResult
	FulfillRequest(ctx context.Context, req *FulfillmentRequest) *OperationResult
	ListDocuments(ctx context.Context, req *ListRequest) *OperationResult
	Status(ctx context.Context) *StatusResult
	RPCModule() *rpcserver.RPCModule
	Live() bool
}

type RegisterRequest struct {
	Content      string `json:"content"`
	DocumentType string `json:"documentType"`
	Note         string `json:"note"`
	DocumentID   string `json:"documentId,omitempty"`
}

type VerifyRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
}

type GenerationRequest struct {
	DocumentType string `json:"documentType"`
	Requirements string `json:"requirements"`
}

type FulfillmentRequest struct {
	RequestID string `json:"requestId"`
	Content   string `json:"content"`
	Note      string `json:"note"`
}

type ListRequest struct {
	Owner string `json:"owner,omitempty"`
}

// OperationResult is the uniform outcome of every notary operation. Only the
// fields relevant to the operation are populated. Simulated marks results
// produced in degraded mode, where nothing reached the chain.
type OperationResult struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message,omitempty"`
	Identifier      *types.Bytes32  `json:"id,omitempty"`
	Digest          *types.Bytes32  `json:"digest,omitempty"`
	TransactionHash *types.Bytes32  `json:"transactionHash,omitempty"`
	Verified        *bool           `json:"verified,omitempty"`
	Documents       []types.Bytes32 `json:"documents,omitempty"`
	Simulated       bool            `json:"simulated,omitempty"`
}

type StatusResult struct {
	Live                 bool   `json:"live"`
	ChainID              int64  `json:"chainId"`
	SignerAddress        string `json:"signerAddress"`
	RegistryAddress      string `json:"registryAddress,omitempty"`
	OrchestrationAddress string `json:"orchestrationAddress,omitempty"`
}

type notary struct {
	ec                  ethclient.EthClient
	chainID             int64
	signerAddr          string
	live                bool
	registry            *registryContract
	orchestration       *orchestrationContract
	txVersion           ethclient.EthTXVersion
	gasPriceFactor      float64
	gasLimit            int64
	confirmationTimeout time.Duration
	receiptRetry        *retry.Retry
	submitLock          sync.Mutex
}

func NewNotary(ctx context.Context, conf *Config, ecf ethclient.EthClientFactory, keymgr ethclient.KeyManager) (Notary, error) {
	_, signerAddr, err := keymgr.ResolveKey(ctx, notaryKeyIdentifier)
	if err != nil {
		return nil, err
	}
	n := &notary{
		ec:                  ecf.HTTPClient(),
		chainID:             ecf.ChainID(),
		signerAddr:          signerAddr,
		live:                true,
		txVersion:           ethclient.EIP1559,
		gasPriceFactor:      confutil.Float64Min(conf.GasPriceFactor, 1.0, *Defaults.GasPriceFactor),
		gasLimit:            confutil.Int64(conf.GasLimit, *Defaults.GasLimit),
		confirmationTimeout: confutil.DurationMin(conf.ConfirmationTimeout, 1*time.Second, *Defaults.ConfirmationTimeout),
		receiptRetry:        retry.NewRetryIndefinite(&conf.ReceiptPolling, ReceiptPollingDefaults),
	}
	if n.gasPriceFactor > maxGasPriceFactor {
		log.L(ctx).Warnf("Gas price factor %.2f clamped to %.2f", n.gasPriceFactor, maxGasPriceFactor)
		n.gasPriceFactor = maxGasPriceFactor
	}
	if confutil.Bool(conf.LegacyTransactions, *Defaults.LegacyTransactions) {
		n.txVersion = ethclient.LEGACY_EIP155
	}
	if n.registry, err = bindRegistry(ctx, n.ec, confutil.StringOrEmpty(conf.RegistryAddress, "")); err != nil {
		return nil, err
	}
	if n.orchestration, err = bindOrchestration(ctx, n.ec, confutil.StringOrEmpty(conf.OrchestrationAddress, "")); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Notary bound on chain %d: registry=%s orchestration=%s signer=%s txVersion=%s",
		n.chainID, n.registry.addr, n.orchestration.addr, n.signerAddr, n.txVersion)
	return n, nil
}

// NewDegradedNotary builds a notary that simulates every operation locally,
// so the process can come up and serve its API without chain connectivity or
// contract addresses. Digests are computed exactly as the live notary
// computes them, so content hashed in degraded mode still matches what a live
// notary would later anchor or verify.
func NewDegradedNotary(ctx context.Context, conf *Config) Notary {
	log.L(ctx).Warnf("Notary starting in degraded mode: operations will be simulated locally")
	return &notary{
		signerAddr: (&ethtypes.Address0xHex{}).String(),
	}
}

func (n *notary) Live() bool {
	return n.live
}

func (n *notary) Status(ctx context.Context) *StatusResult {
	status := &StatusResult{
		Live:          n.live,
		ChainID:       n.chainID,
		SignerAddress: n.signerAddr,
	}
	if n.registry != nil {
		status.RegistryAddress = n.registry.addr.String()
	}
	if n.orchestration != nil {
		status.OrchestrationAddress = n.orchestration.addr.String()
	}
	return status
}

// RegisterDocument anchors the keccak256 digest of the supplied content in
// the on-chain registry. Only the digest is submitted - the content itself
// never leaves this process.
func (n *notary) RegisterDocument(ctx context.Context, req *RegisterRequest) *OperationResult {
	if req.Content == "" {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryContentRequired))
	}
	digest := types.Bytes32Keccak([]byte(req.Content))

	// A caller-supplied identifier is only a fallback. The contract assigns
	// the authoritative identifier, which we read back from the event.
	fallbackID := &digest
	if req.DocumentID != "" {
		id, err := NormalizeDocumentID(ctx, req.DocumentID)
		if err != nil {
			return n.resultFromError(ctx, err)
		}
		fallbackID = &id
	}

	if !n.live {
		return &OperationResult{
			Success:    true,
			Simulated:  true,
			Message:    "Simulated registration (no ledger connectivity)",
			Identifier: fallbackID,
			Digest:     &digest,
		}
	}

	txReq := n.registry.registerDocument.R(ctx).
		Signer(notaryKeyIdentifier).
		To(n.registry.addr).
		Input(map[string]any{
			"contentDigest": digest.String(),
			"documentType":  req.DocumentType,
			"note":          req.Note,
		})
	txHash, err := n.submit(ctx, txReq)
	if err != nil {
		return n.resultFromError(ctx, err)
	}
	receipt, err := n.waitForReceipt(ctx, *txHash)
	if err != nil {
		result := n.resultFromError(ctx, err)
		result.TransactionHash = txHash
		return result
	}

	result := &OperationResult{
		Success:         true,
		Message:         "Document registered",
		Digest:          &digest,
		TransactionHash: txHash,
	}
	if id, ok := ExtractEventB32(ctx, receipt, n.registry.addr, documentRegisteredEvent, "documentId"); ok {
		result.Identifier = id
	} else {
		// Confirmed on chain, but without the event we cannot know the
		// identifier the contract assigned
		result.Identifier = fallbackID
		result.Message = i18n.NewError(ctx, msgs.MsgNotaryEventNotFound,
			documentRegisteredEvent.Name, n.registry.addr, txHash).Error()
		log.L(ctx).Warnf("%s", result.Message)
	}
	return result
}

// VerifyDocument recomputes the digest of the supplied content and asks the
// registry whether it matches the digest recorded under the identifier. This
// is a read-only call against the latest block, so it needs no key and takes
// no lock.
func (n *notary) VerifyDocument(ctx context.Context, req *VerifyRequest) *OperationResult {
	if req.DocumentID == "" {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryIdentifierRequired))
	}
	if req.Content == "" {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryContentRequired))
	}
	id, err := NormalizeDocumentID(ctx, req.DocumentID)
	if err != nil {
		return n.resultFromError(ctx, err)
	}
	digest := types.Bytes32Keccak([]byte(req.Content))

	if !n.live {
		verified := true
		return &OperationResult{
			Success:    true,
			Simulated:  true,
			Message:    "Simulated verification (no ledger connectivity)",
			Identifier: &id,
			Digest:     &digest,
			Verified:   &verified,
		}
	}

	var output struct {
		Verified bool `json:"verified"`
	}
	err = n.registry.verifyDocument.R(ctx).
		To(n.registry.addr).
		Input(map[string]any{
			"documentId":    id.String(),
			"contentDigest": digest.String(),
		}).
		Output(&output).
		Call()
	if err != nil {
		return n.resultFromError(ctx, err)
	}

	result := &OperationResult{
		Success:    true,
		Identifier: &id,
		Digest:     &digest,
		Verified:   &output.Verified,
	}
	if output.Verified {
		result.Message = "Document verified"
	} else {
		result.Message = "Document digest does not match the registry"
	}
	return result
}

// RequestGeneration records a document generation request with the
// orchestration contract, returning the request identifier assigned on chain.
func (n *notary) RequestGeneration(ctx context.Context, req *GenerationRequest) *OperationResult {
	if !n.live {
		simID := types.Bytes32Keccak([]byte(req.DocumentType + "/" + req.Requirements))
		return &OperationResult{
			Success:    true,
			Simulated:  true,
			Message:    "Simulated generation request (no ledger connectivity)",
			Identifier: &simID,
		}
	}

	txReq := n.orchestration.requestDocumentGeneration.R(ctx).
		Signer(notaryKeyIdentifier).
		To(n.orchestration.addr).
		Input(map[string]any{
			"documentType": req.DocumentType,
			"requirements": req.Requirements,
		})
	txHash, err := n.submit(ctx, txReq)
	if err != nil {
		return n.resultFromError(ctx, err)
	}
	receipt, err := n.waitForReceipt(ctx, *txHash)
	if err != nil {
		result := n.resultFromError(ctx, err)
		result.TransactionHash = txHash
		return result
	}

	result := &OperationResult{
		Success:         true,
		Message:         "Document generation requested",
		TransactionHash: txHash,
	}
	if id, ok := ExtractEventB32(ctx, receipt, n.orchestration.addr, documentRequestedEvent, "requestId"); ok {
		result.Identifier = id
	} else {
		placeholder := types.RandBytes32()
		result.Identifier = &placeholder
		result.Message = i18n.NewError(ctx, msgs.MsgNotaryEventNotFound,
			documentRequestedEvent.Name, n.orchestration.addr, txHash).Error()
		log.L(ctx).Warnf("%s", result.Message)
	}
	return result
}

// FulfillRequest submits generated content against a previously recorded
// generation request.
func (n *notary) FulfillRequest(ctx context.Context, req *FulfillmentRequest) *OperationResult {
	if req.RequestID == "" {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryIdentifierRequired))
	}
	if req.Content == "" {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryContentRequired))
	}
	id, err := NormalizeDocumentID(ctx, req.RequestID)
	if err != nil {
		return n.resultFromError(ctx, err)
	}
	digest := types.Bytes32Keccak([]byte(req.Content))

	if !n.live {
		return &OperationResult{
			Success:    true,
			Simulated:  true,
			Message:    "Simulated fulfillment (no ledger connectivity)",
			Identifier: &id,
			Digest:     &digest,
		}
	}

	txReq := n.orchestration.fulfillDocumentRequest.R(ctx).
		Signer(notaryKeyIdentifier).
		To(n.orchestration.addr).
		Input(map[string]any{
			"requestId": id.String(),
			"content":   req.Content,
			"note":      req.Note,
		})
	txHash, err := n.submit(ctx, txReq)
	if err != nil {
		return n.resultFromError(ctx, err)
	}
	if _, err := n.waitForReceipt(ctx, *txHash); err != nil {
		result := n.resultFromError(ctx, err)
		result.TransactionHash = txHash
		return result
	}

	return &OperationResult{
		Success:         true,
		Message:         "Generation request fulfilled",
		Identifier:      &id,
		Digest:          &digest,
		TransactionHash: txHash,
	}
}

// ListDocuments queries the registry for all document identifiers registered
// to the owner address, defaulting to the notary's own signing address.
func (n *notary) ListDocuments(ctx context.Context, req *ListRequest) *OperationResult {
	owner := req.Owner
	if owner == "" {
		owner = n.signerAddr
	}
	addr, err := ethtypes.NewAddress(owner)
	if err != nil {
		return n.resultFromError(ctx, i18n.NewError(ctx, msgs.MsgNotaryBadOwnerAddress, owner))
	}

	if !n.live {
		return &OperationResult{
			Success:   true,
			Simulated: true,
			Message:   "Simulated listing (no ledger connectivity)",
			Documents: []types.Bytes32{},
		}
	}

	var output struct {
		DocumentIDs []types.Bytes32 `json:"documentIds"`
	}
	err = n.registry.getDocumentsByOwner.R(ctx).
		To(n.registry.addr).
		Input(map[string]any{"owner": addr.String()}).
		Output(&output).
		Call()
	if err != nil {
		return n.resultFromError(ctx, err)
	}

	return &OperationResult{
		Success:   true,
		Message:   fmt.Sprintf("%d documents registered to %s", len(output.DocumentIDs), addr),
		Documents: output.DocumentIDs,
	}
}

func (n *notary) resultFromError(ctx context.Context, err error) *OperationResult {
	log.L(ctx).Errorf("Operation failed: %s", err)
	return &OperationResult{
		Success: false,
		Message: err.Error(),
	}
}
