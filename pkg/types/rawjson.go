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
	"bytes"
	"context"
	"encoding/json"

	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// RawJSON is a byte slice that is JSON, and is serialized to/from JSON as-is.
// A nil value serializes as the JSON null.
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if r == nil {
		return ([]byte)(`null`), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	if r == nil {
		return i18n.NewError(context.Background(), msgs.MsgTypesUnmarshalNil)
	}
	*r = data
	return nil
}

// String returns the JSON text, with nil returning the JSON null
func (r RawJSON) String() string {
	if r == nil {
		return `null`
	}
	return (string)(r)
}

// StringValue returns JSON strings unescaped, nil/null as the empty string,
// and any other JSON payload as-is
func (r RawJSON) StringValue() (s string) {
	if r.IsNil() {
		return ""
	}
	d := json.NewDecoder(bytes.NewReader(r))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err == nil {
		switch tv := v.(type) {
		case string:
			return tv
		case json.Number:
			return tv.String()
		case nil:
			return ""
		}
	}
	return (string)(r)
}

func (r RawJSON) IsNil() bool {
	if r == nil {
		return true
	}
	var v any
	if err := json.Unmarshal(r, &v); err != nil {
		return false
	}
	return v == nil
}

func (r RawJSON) Bytes() []byte {
	return r
}

// JSONString marshals any value to RawJSON, swallowing failures in favor of
// an empty value (so suitable for logging and display)
func JSONString(v any) RawJSON {
	b, _ := json.Marshal(v)
	return b
}
