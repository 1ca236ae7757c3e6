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
	"testing"

	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullWidthHexPassthrough(t *testing.T) {
	ctx := context.Background()

	id := types.RandBytes32()

	parsed, err := NormalizeDocumentID(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	// 0x prefix is optional for full width hex
	parsed, err = NormalizeDocumentID(ctx, id.HexString())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	// Case insensitive
	parsed, err = NormalizeDocumentID(ctx, strings.ToUpper(id.HexString()))
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestNormalizeIdempotent(t *testing.T) {
	ctx := context.Background()

	for _, input := range []string{
		"deed-2024-00017",
		"0xdead",
		types.RandBytes32().String(),
	} {
		once, err := NormalizeDocumentID(ctx, input)
		require.NoError(t, err)
		twice, err := NormalizeDocumentID(ctx, once.String())
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeShortLabelPadded(t *testing.T) {
	ctx := context.Background()

	// Too short to be hex, so "0xdead" is a label: its own UTF-8 bytes, left
	// aligned and zero padded
	id, err := NormalizeDocumentID(ctx, "0xdead")
	require.NoError(t, err)
	assert.Equal(t, "0x3078646561640000000000000000000000000000000000000000000000000000", id.String())

	again, err := NormalizeDocumentID(ctx, "0xdead")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	labeled, err := NormalizeDocumentID(ctx, "deed-1")
	require.NoError(t, err)
	assert.Equal(t, byte('d'), labeled[0])
	assert.Equal(t, byte('1'), labeled[5])
	assert.Equal(t, [26]byte{}, [26]byte(labeled[6:32]))
}

func TestNormalizeLongLabelTruncated(t *testing.T) {
	ctx := context.Background()

	long := strings.Repeat("deed-", 10) // 50 bytes
	id, err := NormalizeDocumentID(ctx, long)
	require.NoError(t, err)
	assert.Equal(t, long[0:32], string(id[:]))
}

func TestNormalizeFullWidthLabelNotHex(t *testing.T) {
	ctx := context.Background()

	// 64 characters without an 0x prefix that fail hex parsing are a label
	label := strings.Repeat("z", 64)
	id, err := NormalizeDocumentID(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, label[0:32], string(id[:]))
}

func TestNormalizeFullWidthBadHexRejected(t *testing.T) {
	ctx := context.Background()

	// 0x prefixed and full width means the caller intended binary - refuse to
	// reinterpret it as a label
	badHex := "0x" + strings.Repeat("a", 62) + "zz"
	_, err := NormalizeDocumentID(ctx, badHex)
	assert.Regexp(t, "CH010400", err)
}
