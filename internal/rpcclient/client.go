// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpcclient

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

type RPCError = rpcbackend.RPCError

// ErrorRPC is a real error carrying the underlying JSON/RPC error object.
// rpcbackend returns *RPCError, whose Error() function returns an error
// rather than a string, so it cannot travel as an error itself.
type ErrorRPC interface {
	error
	RPCError() *RPCError
}

type Client interface {
	CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC
}

type WSClient interface {
	Client
	Connect(ctx context.Context) error
	Close()
}

func NewHTTPClient(ctx context.Context, conf *HTTPConfig) (Client, error) {
	rc, err := ParseHTTPConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	return WrapRestyClient(rc), nil
}

func WrapRestyClient(rc *resty.Client) Client {
	return &httpWrap{c: rpcbackend.NewRPCClient(rc)}
}

func NewWSClient(ctx context.Context, conf *WSConfig) (WSClient, error) {
	wsc, err := ParseWSConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &wsWrap{c: rpcbackend.NewWSRPCClient(wsc)}, nil
}

type httpWrap struct {
	c rpcbackend.Backend
}

type errWrap struct {
	e *RPCError
}

func (w *errWrap) Error() string {
	return w.e.Error().Error()
}

func (w *errWrap) RPCError() *RPCError {
	return w.e
}

func wrapIfErr(rpcErr *RPCError) ErrorRPC {
	if rpcErr != nil {
		return &errWrap{rpcErr}
	}
	return nil
}

func (w *httpWrap) CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC {
	rpcErr := w.c.CallRPC(ctx, result, method, params...)
	return wrapIfErr(rpcErr)
}

type wsWrap struct {
	c rpcbackend.WebSocketRPCClient
}

func (w *wsWrap) CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC {
	rpcErr := w.c.CallRPC(ctx, result, method, params...)
	return wrapIfErr(rpcErr)
}

func (w *wsWrap) Connect(ctx context.Context) error {
	return w.c.Connect(ctx)
}

func (w *wsWrap) Close() {
	w.c.Close()
}
