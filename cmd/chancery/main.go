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

	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/pkg/chancery"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, i18n.NewError(context.Background(), msgs.MsgEntrypointMissingConfig).Error())
		os.Exit(int(chancery.RC_FAIL))
	}
	os.Exit(int(chancery.Run(os.Args[1])))
}
