// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/crypto/sha3"
)

// Bytes32 is a 32 byte value, formatted in JSON as lower case hex with an 0x prefix
type Bytes32 [32]byte

// Parse a string
func ParseBytes32Ctx(ctx context.Context, s string) (Bytes32, error) {
	h, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Bytes32{}, i18n.NewError(ctx, msgs.MsgTypesInvalidHex, err)
	}
	if len(h) != 32 {
		return Bytes32{}, i18n.NewError(ctx, msgs.MsgTypesInvalidBytes32Len, 32, len(h))
	}
	return NewBytes32FromSlice(h), nil
}

func MustParseBytes32(s string) Bytes32 {
	b32, err := ParseBytes32Ctx(context.Background(), s)
	if err != nil {
		panic(err)
	}
	return b32
}

// No checking in this function on length
func NewBytes32FromSlice(bytes []byte) Bytes32 {
	var b32 Bytes32
	copy(b32[:], bytes)
	return b32
}

func Bytes32Keccak(b []byte) Bytes32 {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(b)
	var b32 Bytes32
	_ = hash.Sum(b32[0:0])
	return b32
}

// Bytes32UUIDLower16 fills the first 16 bytes with the UUID, leaving the rest zero
func Bytes32UUIDLower16(u uuid.UUID) Bytes32 {
	var b32 Bytes32
	copy(b32[0:16], u[:])
	return b32
}

// UUIDLower16 returns the first 16 bytes as a UUID
func (id Bytes32) UUIDLower16() (u uuid.UUID) {
	copy(u[:], id[0:16])
	return u
}

// Natural string representation is HexString0xPrefix()
func (id Bytes32) String() string {
	return id.HexString0xPrefix()
}

// JSON representation is lower case hex, with 0x prefix
func (id Bytes32) MarshalText() ([]byte, error) {
	return ([]byte)(id.HexString0xPrefix()), nil
}

// Parses with/without 0x in any case
func (id *Bytes32) UnmarshalText(text []byte) error {
	pID, err := ParseBytes32Ctx(context.Background(), string(text))
	if err != nil {
		return err
	}
	*id = pID
	return nil
}

// Get string with 0x prefix
func (id Bytes32) HexString0xPrefix() string {
	return fmt.Sprintf("0x%s", hex.EncodeToString(id[:]))
}

// Get string (without 0x prefix)
func (id Bytes32) HexString() string {
	return hex.EncodeToString(id[:])
}

func (id Bytes32) Bytes() []byte {
	return id[:]
}

func (id *Bytes32) IsZero() bool {
	return id == nil || *id == Bytes32{}
}

// Equals is nil-safe on both sides
func (id *Bytes32) Equals(id2 *Bytes32) bool {
	switch {
	case id == nil && id2 == nil:
		return true
	case id == nil || id2 == nil:
		return false
	default:
		return *id == *id2
	}
}
