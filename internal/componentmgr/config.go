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
	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/internal/notary"
	"github.com/chancerylabs/chancery/internal/rpcserver"
	"github.com/chancerylabs/chancery/pkg/ethclient"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Log        log.Config          `yaml:"log"`
	Blockchain ethclient.Config    `yaml:"blockchain"`
	Signer     notary.SignerConfig `yaml:"signer"`
	Notary     notary.Config       `yaml:"notary"`
	RPCServer  rpcserver.Config    `yaml:"rpcServer"`
}
