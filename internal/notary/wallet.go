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
	"encoding/hex"
	"os"
	"strings"

	"github.com/chancerylabs/chancery/internal/confutil"
	"github.com/chancerylabs/chancery/internal/log"
	"github.com/chancerylabs/chancery/internal/msgs"
	"github.com/chancerylabs/chancery/pkg/types"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"

	"github.com/chancerylabs/chancery/pkg/ethclient"
)

// SignerConfig supplies the single signing credential for the process.
// Exactly one of key, keyFile or generate is expected. The generate option
// creates a throwaway in-memory key, which is useful against dev chains
// where the account can be funded after startup.
type SignerConfig struct {
	Key      *string `yaml:"key"`
	KeyFile  *string `yaml:"keyFile"`
	Generate *bool   `yaml:"generate"`
}

// wallet holds one secp256k1 keypair for the lifetime of the process.
// Key material stays in memory and is never logged or persisted.
type wallet struct {
	keypair *secp256k1.KeyPair
	address string
}

func NewWallet(ctx context.Context, conf *SignerConfig) (ethclient.KeyManager, error) {
	var kp *secp256k1.KeyPair
	var err error
	switch {
	case conf.Key != nil && *conf.Key != "":
		kp, err = parseKeyHex(ctx, *conf.Key)
	case conf.KeyFile != nil && *conf.KeyFile != "":
		fileData, readErr := os.ReadFile(*conf.KeyFile)
		if readErr != nil {
			log.L(ctx).Errorf("Failed to read signing key file: %s", readErr)
			return nil, i18n.NewError(ctx, msgs.MsgSignerBadKeyFile, *conf.KeyFile)
		}
		if kp, err = parseKeyHex(ctx, strings.TrimSpace(string(fileData))); err != nil {
			return nil, i18n.NewError(ctx, msgs.MsgSignerBadKeyFile, *conf.KeyFile)
		}
	case confutil.Bool(conf.Generate, false):
		kp, err = secp256k1.GenerateSecp256k1KeyPair()
	default:
		return nil, i18n.NewError(ctx, msgs.MsgSignerMissingKeyData)
	}
	if err != nil {
		return nil, err
	}
	w := &wallet{
		keypair: kp,
		address: kp.Address.String(),
	}
	log.L(ctx).Infof("Notary signing address %s", w.address)
	return w, nil
}

func parseKeyHex(ctx context.Context, keyHex string) (*secp256k1.KeyPair, error) {
	keyData, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil || len(keyData) != 32 {
		return nil, i18n.NewError(ctx, msgs.MsgSignerBadKeyData)
	}
	kp, err := secp256k1.NewSecp256k1KeyPair(keyData)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgSignerBadKeyData)
	}
	return kp, nil
}

// ResolveKey maps every identifier to the wallet's single credential. The
// identifier is returned as the key handle so logs can carry the name the
// caller used.
func (w *wallet) ResolveKey(ctx context.Context, identifier string) (keyHandle, verifier string, err error) {
	return identifier, w.address, nil
}

func (w *wallet) Sign(ctx context.Context, keyHandle string, payload types.HexBytes) (types.HexBytes, error) {
	sig, err := w.keypair.SignDirect(payload)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSignerSignatureEncoding)
	}
	return sig.CompactRSV(), nil
}

func (w *wallet) Close() {}
