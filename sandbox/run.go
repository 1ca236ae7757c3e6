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

package main

import (
	"encoding/json"

	"github.com/chancerylabs/chancery/internal/componentmgr"
	"github.com/chancerylabs/chancery/internal/log"
	"github.com/google/uuid"
)

func (sb *sandbox) run() error {
	ready := false
	defer func() {
		close(sb.done)
		if !ready {
			close(sb.ready)
		}
	}()

	chain, httpURL, wsURL, chainDone, err := newSimChain(sb.ctx)
	if err != nil {
		return err
	}
	sb.chain = chain
	defer chainDone()
	log.L(sb.ctx).Infof("Simulated chain (chainId=%d) serving at %s", sandboxChainID, httpURL)

	// Whatever the config file says, the stack talks to the in-process chain
	sb.conf.Blockchain.HTTP.URL = httpURL
	sb.conf.Blockchain.WS.URL = wsURL

	sb.cm = componentmgr.NewComponentManager(sb.ctx, uuid.New(), sb.conf)
	defer sb.cm.Stop()
	if err := sb.cm.Init(); err != nil {
		return err
	}
	if err := sb.cm.Start(); err != nil {
		return err
	}

	go sb.listenTerm()

	log.L(sb.ctx).Infof("JSON/RPC server listening at http://%s and ws://%s", sb.cm.RPCServer().HTTPAddr(), sb.cm.RPCServer().WSAddr())
	sb.printExamples()

	ready = true
	close(sb.ready)
	<-sb.ctx.Done()
	log.L(sb.ctx).Info("Sandbox shutdown")
	return nil
}

// printExamples writes a few copy-paste requests to the log, so a first run
// of the sandbox shows how to drive it.
func (sb *sandbox) printExamples() {
	examples := []map[string]any{
		{"jsonrpc": "2.0", "id": 1, "method": "doc_status", "params": []any{}},
		{"jsonrpc": "2.0", "id": 2, "method": "doc_register", "params": []any{"The quick brown fox", "deed", "sandbox filing", ""}},
		{"jsonrpc": "2.0", "id": 3, "method": "doc_listDocuments", "params": []any{""}},
	}
	for _, ex := range examples {
		reqJSON, err := json.Marshal(ex)
		if err != nil {
			continue
		}
		log.L(sb.ctx).Infof("Try: curl -s http://%s -X POST -H 'Content-Type: application/json' -d '%s'", sb.cm.RPCServer().HTTPAddr(), reqJSON)
	}
}
