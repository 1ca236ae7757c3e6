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
	"testing"

	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/httpserver"
	"github.com/chancerylabs/chancery/internal/retry"
	"github.com/chancerylabs/chancery/internal/rpcclient"
	"github.com/chancerylabs/chancery/internal/rpcserver"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChainID           = int64(12345)
	testRegistryAddr      = "0x28a16a2ab54e853371d68b41db0f6bbc69ca1dcd"
	testOrchestrationAddr = "0x7e2c2bd1fa2d86b91be46dd0a1be4a2ac4f0e731"
)

// mockEth stands in for the Ethereum node behind a real JSON/RPC server, so
// the notary is exercised over the same wire path it uses in production.
type mockEth struct {
	eth_chainId               func(context.Context) (ethtypes.HexUint64, error)
	eth_gasPrice              func(context.Context) (ethtypes.HexInteger, error)
	eth_getTransactionCount   func(context.Context, ethtypes.Address0xHex, string) (ethtypes.HexUint64, error)
	eth_call                  func(context.Context, ethsigner.Transaction, string) (types.HexBytes, error)
	eth_sendRawTransaction    func(context.Context, types.HexBytes) (types.HexBytes, error)
	eth_getTransactionReceipt func(context.Context, types.Bytes32) (*testReceipt, error)
}

// testReceipt is the receipt in the node's wire format. Returning a nil
// pointer simulates a transaction that has not been mined yet.
type testReceipt struct {
	BlockHash        ethtypes.HexBytes0xPrefix  `json:"blockHash"`
	BlockNumber      *ethtypes.HexInteger       `json:"blockNumber"`
	TransactionHash  ethtypes.HexBytes0xPrefix  `json:"transactionHash"`
	TransactionIndex *ethtypes.HexInteger       `json:"transactionIndex"`
	From             *ethtypes.Address0xHex     `json:"from"`
	To               *ethtypes.Address0xHex     `json:"to"`
	GasUsed          *ethtypes.HexInteger       `json:"gasUsed"`
	Status           *ethtypes.HexInteger       `json:"status"`
	Logs             []*ethclient.ReceiptLog    `json:"logs"`
	RevertReason     *ethtypes.HexBytes0xPrefix `json:"revertReason"`
}

func newTestServer(t *testing.T, ctx context.Context, mEth *mockEth) (rpcserver.Server, func()) {
	rpcServer, err := rpcserver.NewServer(ctx, &rpcserver.Config{
		HTTP: rpcserver.HTTPEndpointConfig{Config: httpserver.Config{Port: confutil.P(0)}},
		WS:   rpcserver.WSEndpointConfig{Config: httpserver.Config{Port: confutil.P(0)}},
	})
	require.NoError(t, err)

	if mEth.eth_chainId == nil {
		mEth.eth_chainId = func(ctx context.Context) (ethtypes.HexUint64, error) {
			return ethtypes.HexUint64(testChainID), nil
		}
	}
	if mEth.eth_gasPrice == nil {
		mEth.eth_gasPrice = func(ctx context.Context) (ethtypes.HexInteger, error) {
			return *ethtypes.NewHexInteger64(2000000000), nil
		}
	}
	if mEth.eth_getTransactionCount == nil {
		mEth.eth_getTransactionCount = func(ctx context.Context, a ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
			return 16, nil
		}
	}

	rpcServer.Register(rpcserver.NewRPCModule("eth").
		Add("eth_chainId", rpcserver.RPCMethod0(mEth.eth_chainId)).
		Add("eth_gasPrice", rpcserver.RPCMethod0(mEth.eth_gasPrice)).
		Add("eth_getTransactionCount", rpcserver.RPCMethod2(mEth.eth_getTransactionCount)).
		Add("eth_call", rpcserver.RPCMethod2(mEth.eth_call)).
		Add("eth_sendRawTransaction", rpcserver.RPCMethod1(mEth.eth_sendRawTransaction)).
		Add("eth_getTransactionReceipt", rpcserver.RPCMethod1(mEth.eth_getTransactionReceipt)),
	)

	err = rpcServer.Start()
	require.NoError(t, err)

	return rpcServer, func() {
		rpcServer.Stop()
	}
}

func newTestFactory(t *testing.T, mEth *mockEth) (ctx context.Context, keymgr ethclient.KeyManager, ecf ethclient.EthClientFactory, done func()) {
	ctx = context.Background()

	rpcServer, serverDone := newTestServer(t, ctx, mEth)

	keymgr, err := NewWallet(ctx, &SignerConfig{Generate: confutil.P(true)})
	require.NoError(t, err)

	ecf, err = ethclient.NewEthClientFactory(ctx, keymgr, &ethclient.Config{
		HTTP: rpcclient.HTTPConfig{
			URL: fmt.Sprintf("http://%s", rpcServer.HTTPAddr().String()),
		},
		WS: rpcclient.WSConfig{
			HTTPConfig: rpcclient.HTTPConfig{
				URL: fmt.Sprintf("ws://%s", rpcServer.WSAddr().String()),
			},
		},
	})
	require.NoError(t, err)

	return ctx, keymgr, ecf, func() {
		ecf.Close()
		keymgr.Close()
		serverDone()
	}
}

// Short timeouts here keep the receipt polling loop tests fast. The 1s
// confirmation timeout is the configuration minimum.
func newTestNotaryConf() *Config {
	return &Config{
		RegistryAddress:      confutil.P(testRegistryAddr),
		OrchestrationAddress: confutil.P(testOrchestrationAddr),
		ConfirmationTimeout:  confutil.P("1s"),
		ReceiptPolling: retry.Config{
			InitialDelay: confutil.P("1ms"),
			MaxDelay:     confutil.P("5ms"),
		},
	}
}

func newTestNotary(t *testing.T, mEth *mockEth, confMods ...func(*Config)) (ctx context.Context, n *notary, done func()) {
	ctx, keymgr, ecf, done := newTestFactory(t, mEth)

	conf := newTestNotaryConf()
	for _, mod := range confMods {
		mod(conf)
	}

	in, err := NewNotary(ctx, conf, ecf, keymgr)
	require.NoError(t, err)
	return ctx, in.(*notary), done
}

func successReceipt(txHash types.Bytes32, logs ...*ethclient.ReceiptLog) *testReceipt {
	return &testReceipt{
		BlockHash:        types.RandBytes(32),
		BlockNumber:      ethtypes.NewHexInteger64(1024),
		TransactionHash:  txHash.Bytes(),
		TransactionIndex: ethtypes.NewHexInteger64(0),
		GasUsed:          ethtypes.NewHexInteger64(68000),
		Status:           ethtypes.NewHexInteger64(1),
		Logs:             logs,
	}
}

func revertedReceipt(txHash types.Bytes32, revertData []byte) *testReceipt {
	r := &testReceipt{
		BlockHash:        types.RandBytes(32),
		BlockNumber:      ethtypes.NewHexInteger64(1024),
		TransactionHash:  txHash.Bytes(),
		TransactionIndex: ethtypes.NewHexInteger64(0),
		Status:           ethtypes.NewHexInteger64(0),
	}
	if revertData != nil {
		revertReason := ethtypes.HexBytes0xPrefix(revertData)
		r.RevertReason = &revertReason
	}
	return r
}

// addressTopic packs an address into a 32 byte topic the way the EVM does for
// indexed address parameters.
func addressTopic(addr string) ethtypes.HexBytes0xPrefix {
	var topic [32]byte
	a := ethtypes.MustNewAddress(addr)
	copy(topic[12:], a[:])
	return topic[:]
}

func registeredEventLog(t *testing.T, contractAddr string, docID types.Bytes32, owner string) *ethclient.ReceiptLog {
	sigHash, err := documentRegisteredEvent.SignatureHash()
	require.NoError(t, err)
	return &ethclient.ReceiptLog{
		Address: ethtypes.MustNewAddress(contractAddr),
		Topics: []ethtypes.HexBytes0xPrefix{
			sigHash,
			docID.Bytes(),
			addressTopic(owner),
		},
	}
}

func requestedEventLog(t *testing.T, contractAddr string, reqID types.Bytes32, requester string) *ethclient.ReceiptLog {
	sigHash, err := documentRequestedEvent.SignatureHash()
	require.NoError(t, err)
	return &ethclient.ReceiptLog{
		Address: ethtypes.MustNewAddress(contractAddr),
		Topics: []ethtypes.HexBytes0xPrefix{
			sigHash,
			reqID.Bytes(),
			addressTopic(requester),
		},
	}
}

func TestNewNotaryBadRegistryAddress(t *testing.T) {
	ctx, keymgr, ecf, done := newTestFactory(t, &mockEth{})
	defer done()

	conf := newTestNotaryConf()
	conf.RegistryAddress = confutil.P("not-an-address")
	_, err := NewNotary(ctx, conf, ecf, keymgr)
	assert.Regexp(t, "CH010401.*registry", err)
}

func TestNewNotaryMissingOrchestrationAddress(t *testing.T) {
	ctx, keymgr, ecf, done := newTestFactory(t, &mockEth{})
	defer done()

	conf := newTestNotaryConf()
	conf.OrchestrationAddress = nil
	_, err := NewNotary(ctx, conf, ecf, keymgr)
	assert.Regexp(t, "CH010401.*orchestration", err)
}

func TestNewNotaryGasPriceFactorClamped(t *testing.T) {
	_, n, done := newTestNotary(t, &mockEth{}, func(conf *Config) {
		conf.GasPriceFactor = confutil.P(99.0)
	})
	defer done()
	assert.Equal(t, maxGasPriceFactor, n.gasPriceFactor)

	_, n2, done2 := newTestNotary(t, &mockEth{}, func(conf *Config) {
		conf.GasPriceFactor = confutil.P(0.25)
	})
	defer done2()
	assert.Equal(t, 1.0, n2.gasPriceFactor)
}

func TestNewNotaryTXVersionSelection(t *testing.T) {
	_, n, done := newTestNotary(t, &mockEth{})
	defer done()
	assert.Equal(t, ethclient.EIP1559, n.txVersion)

	_, n2, done2 := newTestNotary(t, &mockEth{}, func(conf *Config) {
		conf.LegacyTransactions = confutil.P(true)
	})
	defer done2()
	assert.Equal(t, ethclient.LEGACY_EIP155, n2.txVersion)
}

func TestStatusLive(t *testing.T) {
	ctx, n, done := newTestNotary(t, &mockEth{})
	defer done()

	assert.True(t, n.Live())
	status := n.Status(ctx)
	assert.True(t, status.Live)
	assert.Equal(t, testChainID, status.ChainID)
	assert.Equal(t, n.signerAddr, status.SignerAddress)
	assert.Equal(t, testRegistryAddr, status.RegistryAddress)
	assert.Equal(t, testOrchestrationAddr, status.OrchestrationAddress)
}

func TestStatusDegraded(t *testing.T) {
	ctx := context.Background()
	n := NewDegradedNotary(ctx, &Config{})

	assert.False(t, n.Live())
	status := n.Status(ctx)
	assert.False(t, status.Live)
	assert.Equal(t, int64(0), status.ChainID)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", status.SignerAddress)
	assert.Empty(t, status.RegistryAddress)
	assert.Empty(t, status.OrchestrationAddress)
}
