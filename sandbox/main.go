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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chancerylabs/chancery/internal/componentmgr"
	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/log"
)

var exitProcess = os.Exit

// The sandbox runs the full notarization stack against a simulated chain held
// in the same process, so the doc_* JSON/RPC methods can be exercised with no
// external dependencies at all. It is a development harness, not a deployment.
func main() {
	sb, err := newSandbox(os.Args)
	if err == nil {
		err = sb.run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		exitProcess(1)
	}
}

type sandbox struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	conf      *componentmgr.Config
	cm        componentmgr.ComponentManager
	sigc      chan os.Signal
	chain     *simChain
	ready     chan struct{}
	done      chan struct{}
}

func newSandbox(args []string) (sb *sandbox, err error) {
	sb = &sandbox{
		sigc:  make(chan os.Signal, 1),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
	sb.ctx, sb.cancelCtx = context.WithCancel(context.Background())
	if sb.conf, err = sb.setupConfig(args); err != nil {
		return nil, err
	}
	return sb, nil
}

func (sb *sandbox) setupConfig(args []string) (*componentmgr.Config, error) {
	configFile := "./sandbox/sandbox.config.yaml"
	if len(args) >= 2 {
		configFile = args[1]
	}
	var conf componentmgr.Config
	if err := confutil.ReadAndParseYAMLFile(sb.ctx, configFile, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (sb *sandbox) listenTerm() {
	signal.Notify(sb.sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sb.sigc
	sb.stop()
}

func (sb *sandbox) stop() {
	log.L(sb.ctx).Infof("Sandbox shutting down")
	sb.cancelCtx()
}
