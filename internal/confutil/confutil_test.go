// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package confutil

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 12345, Int(nil, 12345))
	assert.Equal(t, 23456, Int(P(23456), 12345))
	assert.Equal(t, 10, IntMin(nil, 1, 10))
	assert.Equal(t, 1, IntMin(P(0), 1, 10))
	assert.Equal(t, 5, IntMin(P(5), 1, 10))
}

func TestInt64(t *testing.T) {
	assert.Equal(t, int64(12345), Int64(nil, 12345))
	assert.Equal(t, int64(23456), Int64(P(int64(23456)), 12345))
	assert.Equal(t, int64(10), Int64Min(nil, 1, 10))
	assert.Equal(t, int64(1), Int64Min(P(int64(0)), 1, 10))
	assert.Equal(t, int64(5), Int64Min(P(int64(5)), 1, 10))
}

func TestFloat64(t *testing.T) {
	assert.Equal(t, 1.5, Float64Min(nil, 1.0, 1.5))
	assert.Equal(t, 1.0, Float64Min(P(0.5), 1.0, 1.5))
	assert.Equal(t, 2.5, Float64Min(P(2.5), 1.0, 1.5))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(nil, true))
	assert.False(t, Bool(nil, false))
	assert.True(t, Bool(P(true), false))
}

func TestString(t *testing.T) {
	assert.Equal(t, "def", StringNotEmpty(nil, "def"))
	assert.Equal(t, "def", StringNotEmpty(P(""), "def"))
	assert.Equal(t, "set", StringNotEmpty(P("set"), "def"))
	assert.Equal(t, "def", StringOrEmpty(nil, "def"))
	assert.Equal(t, "", StringOrEmpty(P(""), "def"))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"def"}, StringSlice(nil, []string{"def"}))
	assert.Equal(t, []string{}, StringSlice([]string{}, []string{"def"}))
	assert.Equal(t, []string{"set"}, StringSlice([]string{"set"}, []string{"def"}))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 50*time.Second, Duration(nil, "50s"))
	assert.Equal(t, 50*time.Second, Duration(P("wrong"), "50s"))
	assert.Equal(t, 100*time.Millisecond, Duration(P("100ms"), "50s"))
	assert.Equal(t, 1*time.Second, DurationMin(P("100ms"), 1*time.Second, "50s"))
	assert.Equal(t, int64(50), DurationSeconds(nil, 0, "50s"))
	assert.Equal(t, int64(1), DurationSeconds(P("100ms"), 0, "50s"))
}

func TestBigInt(t *testing.T) {
	assert.Equal(t, big.NewInt(100), BigInt(nil, "100"))
	assert.Equal(t, big.NewInt(100), BigInt(P("!wrong"), "100"))
	assert.Equal(t, big.NewInt(255), BigInt(P("0xff"), "100"))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, int64(16*1024), ByteSize(nil, 0, "16Kb"))
	assert.Equal(t, int64(16*1024), ByteSize(P("wrong"), 0, "16Kb"))
	assert.Equal(t, int64(1024*1024), ByteSize(P("1Mb"), 0, "16Kb"))
	assert.Equal(t, int64(1024), ByteSize(P("1"), 1024, "16Kb"))
}

func TestReadAndParseYAMLFileFlatStruct(t *testing.T) {
	ctx := context.Background()

	type testConfigType struct {
		Foo *string `yaml:"foo"`
		Bar *int    `yaml:"bar"`
		Baz *int    `yaml:"baz"`
	}
	tempFile, err := os.CreateTemp("", "test_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tempFile.Name())

	yamlContent := []byte(`
foo: value1
bar: 123
`)
	_, err = tempFile.Write(yamlContent)
	require.NoError(t, err)
	tempFile.Close()

	result := testConfigType{}
	err = ReadAndParseYAMLFile(ctx, tempFile.Name(), &result)
	assert.NoError(t, err)
	require.NotNil(t, result.Foo)
	assert.Equal(t, "value1", *result.Foo)
	require.NotNil(t, result.Bar)
	assert.Equal(t, 123, *result.Bar)
	assert.Nil(t, result.Baz)
}

func TestReadAndParseYAMLFileNestedStruct(t *testing.T) {
	ctx := context.Background()

	type testConfigChildType struct {
		Foo *string `yaml:"foo"`
		Bar *int    `yaml:"bar"`
	}
	type testConfigType struct {
		Child *testConfigChildType `yaml:"child"`
		Baz   *int                 `yaml:"baz"`
	}
	tempFile, err := os.CreateTemp("", "test_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tempFile.Name())

	yamlContent := []byte(`
child:
  foo: value1
  bar: 123
baz: 456
`)
	_, err = tempFile.Write(yamlContent)
	require.NoError(t, err)
	tempFile.Close()

	result := testConfigType{}
	err = ReadAndParseYAMLFile(ctx, tempFile.Name(), &result)
	assert.NoError(t, err)
	require.NotNil(t, result.Child)
	require.NotNil(t, result.Child.Foo)
	assert.Equal(t, "value1", *result.Child.Foo)
	require.NotNil(t, result.Child.Bar)
	assert.Equal(t, 123, *result.Child.Bar)
	require.NotNil(t, result.Baz)
	assert.Equal(t, 456, *result.Baz)
}

func TestReadAndParseYAMLFileFailMissingFile(t *testing.T) {
	ctx := context.Background()
	tempFile, err := os.CreateTemp("", "test_*.yaml")
	require.NoError(t, err)

	// we only need the name
	os.Remove(tempFile.Name())
	tempFile.Close()

	err = ReadAndParseYAMLFile(ctx, tempFile.Name(), P(struct{}{}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CH010500")
	assert.Contains(t, err.Error(), tempFile.Name())
}

func TestReadAndParseYAMLFileFailedParse(t *testing.T) {
	ctx := context.Background()

	type testConfigType struct {
		Foo *string `yaml:"foo"`
	}
	tempFile, err := os.CreateTemp("", "test_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tempFile.Name())

	yamlContent := []byte(`
foo: value1
invalid yaml content
`)
	_, err = tempFile.Write(yamlContent)
	require.NoError(t, err)
	tempFile.Close()

	result := testConfigType{}
	err = ReadAndParseYAMLFile(ctx, tempFile.Name(), &result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CH010502")
}
