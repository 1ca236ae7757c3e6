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
	"strings"

	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// NormalizeDocumentID converts a caller supplied identifier to the fixed
// 32 byte form used on chain. Full width hex (64 chars, 0x prefix optional)
// passes through as the bytes it encodes. Anything else is treated as a
// label: its raw UTF-8 bytes left aligned and zero padded into the 32 bytes,
// truncated beyond the width.
//
// An 0x prefixed value of full width that fails hex parsing is rejected
// rather than silently reinterpreted as a label, since the caller clearly
// intended a binary identifier. Registration and verification share this
// one implementation, so equal inputs always produce equal identifiers.
func NormalizeDocumentID(ctx context.Context, id string) (types.Bytes32, error) {
	hexPart := strings.TrimPrefix(id, "0x")
	if len(hexPart) == 64 {
		parsed, err := types.ParseBytes32Ctx(ctx, hexPart)
		if err == nil {
			return parsed, nil
		}
		if strings.HasPrefix(id, "0x") {
			return types.Bytes32{}, i18n.NewError(ctx, msgs.MsgNotaryIdentifierBadHex, id)
		}
		// a 64 character label that just happens not to be hex
	}
	var id32 types.Bytes32
	copy(id32[:], id)
	return id32, nil
}
