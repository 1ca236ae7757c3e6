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

package componentmgr

import (
	"context"

	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/internal/notary"
	"github.com/chancerylabs/chancery/internal/rpcserver"
	"github.com/chancerylabs/chancery/pkg/ethclient"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// ComponentManager owns construction order, startup order and shutdown order
// for everything in the process.
type ComponentManager interface {
	Init() error
	Start() error
	Stop()
	KeyManager() ethclient.KeyManager
	EthClientFactory() ethclient.EthClientFactory
	Notary() notary.Notary
	RPCServer() rpcserver.Server
}

type componentManager struct {
	instanceUUID uuid.UUID
	bgCtx        context.Context
	// config
	conf *Config
	// components, in init order
	keyManager       ethclient.KeyManager
	ethClientFactory ethclient.EthClientFactory
	notary           notary.Notary
	rpcServer        rpcserver.Server
	// keep track of everything we started
	started map[string]stoppable
	opened  map[string]closeable
}

// things that have a running component that is active in the background and hence "stop"
type stoppable interface {
	Stop()
}

// things that are services used in various places, but need to cleanly disconnect all connections and hence "close"
type closeable interface {
	Close()
}

func NewComponentManager(bgCtx context.Context, instanceUUID uuid.UUID, conf *Config) ComponentManager {
	log.InitConfig(&conf.Log)
	return &componentManager{
		instanceUUID: instanceUUID,
		bgCtx:        bgCtx,
		conf:         conf,
		started:      make(map[string]stoppable),
		opened:       make(map[string]closeable),
	}
}

func (cm *componentManager) Init() error {
	// Ledger-facing components degrade rather than fail the process. A notary
	// without a working chain connection still serves the full JSON/RPC API,
	// returning locally simulated results.
	if err := cm.initLedger(); err != nil {
		log.L(cm.bgCtx).Errorf("Ledger connectivity unavailable: %s", err)
		for name, c := range cm.opened {
			log.L(cm.bgCtx).Debugf("Closing %s", name)
			c.Close()
		}
		cm.opened = make(map[string]closeable)
		cm.keyManager = nil
		cm.ethClientFactory = nil
		cm.notary = notary.NewDegradedNotary(cm.bgCtx, &cm.conf.Notary)
	}

	rpcServer, err := rpcserver.NewServer(cm.bgCtx, &cm.conf.RPCServer)
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, msgs.MsgComponentRPCServerInitError)
	}
	cm.rpcServer = rpcServer

	log.L(cm.bgCtx).Infof("Instance %s initialized live=%t", cm.instanceUUID, cm.notary.Live())
	return nil
}

// initLedger brings up the chain-facing components in dependency order. Any
// failure aborts the whole chain - the caller decides whether that is fatal.
func (cm *componentManager) initLedger() (err error) {
	cm.keyManager, err = notary.NewWallet(cm.bgCtx, &cm.conf.Signer)
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, msgs.MsgComponentWalletInitError)
	}
	cm.opened["wallet"] = cm.keyManager

	cm.ethClientFactory, err = ethclient.NewEthClientFactory(cm.bgCtx, cm.keyManager, &cm.conf.Blockchain)
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, msgs.MsgComponentEthClientInitError)
	}
	cm.opened["eth_client"] = cm.ethClientFactory

	cm.notary, err = notary.NewNotary(cm.bgCtx, &cm.conf.Notary, cm.ethClientFactory, cm.keyManager)
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, msgs.MsgComponentNotaryInitError)
	}
	return nil
}

func (cm *componentManager) Start() error {
	// the RPC server starts last, once everything it exposes is ready
	cm.registerRPCModules()
	err := cm.rpcServer.Start()
	if err != nil {
		return i18n.WrapError(cm.bgCtx, err, msgs.MsgComponentRPCServerStartError)
	}
	cm.started["rpc_server"] = cm.rpcServer

	httpEndpoint := "disabled"
	if cm.rpcServer.HTTPAddr() != nil {
		httpEndpoint = cm.rpcServer.HTTPAddr().String()
	}
	wsEndpoint := "disabled"
	if cm.rpcServer.WSAddr() != nil {
		wsEndpoint = cm.rpcServer.WSAddr().String()
	}
	log.L(cm.bgCtx).Infof("RPC endpoints http=%s ws=%s", httpEndpoint, wsEndpoint)
	log.L(cm.bgCtx).Infof("Startup complete")
	return nil
}

func (cm *componentManager) registerRPCModules() {
	cm.rpcServer.Register(cm.notary.RPCModule())
}

func (cm *componentManager) Stop() {
	log.L(cm.bgCtx).Info("Stopping")
	// stop all the stoppable things we started
	for name, c := range cm.started {
		log.L(cm.bgCtx).Infof("Stopping %s", name)
		c.Stop()
		log.L(cm.bgCtx).Debugf("Stopped %s", name)
	}
	// close all the closable things we opened
	for name, c := range cm.opened {
		log.L(cm.bgCtx).Infof("Stopping %s", name)
		c.Close()
		log.L(cm.bgCtx).Debugf("Stopped %s", name)
	}
	log.L(cm.bgCtx).Debug("Stopped")
}

func (cm *componentManager) KeyManager() ethclient.KeyManager {
	return cm.keyManager
}

func (cm *componentManager) EthClientFactory() ethclient.EthClientFactory {
	return cm.ethClientFactory
}

func (cm *componentManager) Notary() notary.Notary {
	return cm.notary
}

func (cm *componentManager) RPCServer() rpcserver.Server {
	return cm.rpcServer
}
