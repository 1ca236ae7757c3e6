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

package ethclient

import (
	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/rpcclient"
)

// Config is the blockchain section of the daemon configuration, pointing at the
// JSON/RPC endpoints of the Ethereum node used for anchoring.
type Config struct {
	HTTP              rpcclient.HTTPConfig `yaml:"http"`
	WS                rpcclient.WSConfig   `yaml:"ws"`
	GasEstimateFactor *float64             `yaml:"gasEstimateFactor"`
}

var Defaults = &Config{
	GasEstimateFactor: confutil.P(1.5),
}
