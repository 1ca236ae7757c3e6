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

	"github.com/chancerylabs/chancery/internal/rpcserver"
)

// RPCModule exposes the notary operations as the doc_* JSON/RPC method group.
// Parameters are positional strings. Optional parameters (the documentId of
// doc_register, the owner of doc_listDocuments) are still positional and are
// passed as an empty string when unused.
func (n *notary) RPCModule() *rpcserver.RPCModule {
	return rpcserver.NewRPCModule("doc").
		Add("doc_register", rpcserver.RPCMethod4(func(ctx context.Context, content, documentType, note, documentID string) (*OperationResult, error) {
			return n.RegisterDocument(ctx, &RegisterRequest{
				Content:      content,
				DocumentType: documentType,
				Note:         note,
				DocumentID:   documentID,
			}), nil
		})).
		Add("doc_verify", rpcserver.RPCMethod2(func(ctx context.Context, documentID, content string) (*OperationResult, error) {
			return n.VerifyDocument(ctx, &VerifyRequest{
				DocumentID: documentID,
				Content:    content,
			}), nil
		})).
		Add("doc_requestGeneration", rpcserver.RPCMethod2(func(ctx context.Context, documentType, requirements string) (*OperationResult, error) {
			return n.RequestGeneration(ctx, &GenerationRequest{
				DocumentType: documentType,
				Requirements: requirements,
			}), nil
		})).
		Add("doc_fulfillRequest", rpcserver.RPCMethod3(func(ctx context.Context, requestID, content, note string) (*OperationResult, error) {
			return n.FulfillRequest(ctx, &FulfillmentRequest{
				RequestID: requestID,
				Content:   content,
				Note:      note,
			}), nil
		})).
		Add("doc_listDocuments", rpcserver.RPCMethod1(func(ctx context.Context, owner string) (*OperationResult, error) {
			return n.ListDocuments(ctx, &ListRequest{Owner: owner}), nil
		})).
		Add("doc_status", rpcserver.RPCMethod0(func(ctx context.Context) (*StatusResult, error) {
			return n.Status(ctx), nil
		}))
}
