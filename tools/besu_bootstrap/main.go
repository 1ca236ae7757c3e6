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
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
)

// Initializes a Besu data directory for a single-validator QBFT devnet, plus
// a pre-funded signing key for the notary daemon. The notary.key file is in
// the format the signer.keyFile config option reads.
//
// NOTE: To get the right permissions, this needs to run inside docker against
// the volume of Besu.
func main() {
	if len(os.Args) < 2 {
		exitErrorf("missing directory")
	}
	dir := os.Args[1]
	dataDir := path.Join(dir, "data")
	keyFile := path.Join(dir, "key")
	keyPubFile := path.Join(dir, "key.pub")
	notaryKeyFile := path.Join(dir, "notary.key")
	genesisFile := path.Join(dir, "genesis.json")

	if !fileExists(dir) {
		mkdir(dir)
	}
	if !fileExists(dataDir) {
		mkdir(dataDir)
	}

	// Check not already initialized
	if fileExists(keyFile) || fileExists(keyPubFile) || fileExists(genesisFile) {
		fmt.Println("already initialized")
		osExit(0) // this is ok - nothing to do
	}

	// The validator key pair for the Besu node itself
	validator, _ := secp256k1.GenerateSecp256k1KeyPair()
	writeFileStr(keyFile, (ethtypes.HexBytes0xPrefix)(validator.PrivateKeyBytes()))
	writeFileStr(keyPubFile, (ethtypes.HexBytes0xPrefix)(validator.PublicKeyBytes()))

	// The signing key the notary daemon submits transactions with
	notary, _ := secp256k1.GenerateSecp256k1KeyPair()
	writeFileStr(notaryKeyFile, (ethtypes.HexBytes0xPrefix)(notary.PrivateKeyBytes()))

	oneEth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	manyEth := *ethtypes.NewHexInteger(new(big.Int).Mul(oneEth, big.NewInt(1000000000)))
	genesis := &GenesisJSON{
		Config: GenesisConfig{
			ChainID:     1337,
			CancunTime:  0,
			ZeroBaseFee: ptrTo(true),
			QBFT: &QBFTConfig{
				BlockPeriodSeconds:      ptrTo(1), // overridden by BlockPeriodMilliseconds
				EpochLength:             ptrTo(30000),
				RequestTimeoutSeconds:   ptrTo(10),
				EmptyBlockPeriodSeconds: ptrTo(10),
				BlockPeriodMilliseconds: ptrTo(200),
			},
		},
		Nonce:      0,
		Timestamp:  ethtypes.HexUint64(time.Now().Unix()),
		GasLimit:   30 * 1000000,
		Difficulty: 1,
		MixHash:    randBytes(32),
		Coinbase:   ethtypes.MustNewAddress("0x0000000000000000000000000000000000000000"),
		Alloc: map[string]AllocEntry{
			validator.Address.String(): {Balance: manyEth},
			notary.Address.String():    {Balance: manyEth},
		},
		ExtraData: qbftExtraData(validator.Address),
	}
	writeFileJSON(genesisFile, &genesis)

	fmt.Printf("notary signing account %s funded in genesis\n", notary.Address)
}

var osExit = os.Exit

func exitErrorf(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	osExit(1)
}

func mkdir(dir string) {
	err := os.Mkdir(dir, 0777)
	if err != nil {
		exitErrorf("failed to make dir %q: %s", dir, err)
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

func writeFileStr(filename string, stringable fmt.Stringer) {
	writeFile(filename, ([]byte)(stringable.String()))
}

func writeFileJSON(filename string, jsonable any) {
	b, err := json.MarshalIndent(jsonable, "", "  ")
	if err != nil {
		exitErrorf("failed to marshal %T: %s", jsonable, err)
	}
	writeFile(filename, b)
}

func writeFile(filename string, data []byte) {
	err := os.WriteFile(filename, data, 0666)
	if err != nil {
		exitErrorf("failed to write file %q: %s", filename, err)
	}
}

func randBytes(len int) []byte {
	b := make([]byte, len)
	_, _ = rand.Read(b)
	return b
}

func ptrTo[T any](v T) *T {
	return &v
}
