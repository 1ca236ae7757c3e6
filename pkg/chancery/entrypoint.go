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

package chancery

import (
	"sync/atomic"
)

var running atomic.Pointer[instance]

// Run blocks serving the configured endpoints, until Stop is called or a
// termination signal is received. One instance per process.
func Run(configFile string) RC {
	i := newInstance(configFile)
	if !running.CompareAndSwap(nil, i) {
		panic("already running")
	}
	return i.run()
}

// Stop shuts down the running instance and waits for it to finish. No-op if
// nothing is running.
func Stop() {
	if i := running.Load(); i != nil {
		i.stop()
	}
}
