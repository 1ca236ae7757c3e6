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
	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/retry"
)

// Config is the notary section of the daemon configuration. The two contract
// addresses are required for live operation - when either is missing the
// daemon falls back to a degraded notary rather than failing startup.
type Config struct {
	RegistryAddress      *string      `yaml:"registryAddress"`
	OrchestrationAddress *string      `yaml:"orchestrationAddress"`
	GasPriceFactor       *float64     `yaml:"gasPriceFactor"`
	GasLimit             *int64       `yaml:"gasLimit"`
	LegacyTransactions   *bool        `yaml:"legacyTransactions"`
	ConfirmationTimeout  *string      `yaml:"confirmationTimeout"`
	ReceiptPolling       retry.Config `yaml:"receiptPolling"`
}

// The gas price factor trades a bounded overpayment for confirmation latency.
// Values outside [1.0,5.0] are clamped.
const maxGasPriceFactor = 5.0

var Defaults = &Config{
	GasPriceFactor:      confutil.P(1.15),
	GasLimit:            confutil.P(int64(500000)),
	LegacyTransactions:  confutil.P(false),
	ConfirmationTimeout: confutil.P("2m"),
}

var ReceiptPollingDefaults = &retry.Config{
	InitialDelay: confutil.P("2s"),
	MaxDelay:     confutil.P("15s"),
	Factor:       confutil.P(1.5),
}
