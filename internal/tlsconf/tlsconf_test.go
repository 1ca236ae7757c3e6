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

package tlsconf

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSelfSignedTLSKeyPair(t *testing.T, subject pkix.Name) (string, string) {
	privatekey, _ := rsa.GenerateKey(rand.Reader, 2048)
	publickey := &privatekey.PublicKey
	privateKeyBlock := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privatekey)}
	privateKeyPEM := &strings.Builder{}
	err := pem.Encode(privateKeyPEM, privateKeyBlock)
	require.NoError(t, err)
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)
	x509Template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               subject,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(100 * time.Second),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	derBytes, err := x509.CreateCertificate(rand.Reader, x509Template, x509Template, publickey, privatekey)
	require.NoError(t, err)
	publicKeyPEM := &strings.Builder{}
	err = pem.Encode(publicKeyPEM, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	require.NoError(t, err)
	return publicKeyPEM.String(), privateKeyPEM.String()
}

func writeTempPEM(t *testing.T, content string, name string) string {
	fileName := path.Join(t.TempDir(), name)
	err := os.WriteFile(fileName, []byte(content), 0600)
	require.NoError(t, err)
	return fileName
}

func TestNilIfNotEnabled(t *testing.T) {
	tlsConfig, err := BuildTLSConfig(context.Background(), &Config{}, ClientType)
	require.NoError(t, err)
	assert.Nil(t, tlsConfig)
}

func TestTLSDefault(t *testing.T) {
	tlsConfig, err := BuildTLSConfig(context.Background(), &Config{Enabled: true}, ClientType)
	require.NoError(t, err)
	require.NotNil(t, tlsConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), tlsConfig.MinVersion)
	assert.False(t, tlsConfig.InsecureSkipVerify)
}

func TestErrInvalidCAFile(t *testing.T) {
	_, key := buildSelfSignedTLSKeyPair(t, pkix.Name{CommonName: "server.example.com"})
	_, err := BuildTLSConfig(context.Background(), &Config{
		Enabled: true,
		CAFile:  writeTempPEM(t, key /* not a cert */, "ca.pem"),
	}, ClientType)
	assert.Regexp(t, "CH010600", err)
}

func TestErrMissingCAFile(t *testing.T) {
	_, err := BuildTLSConfig(context.Background(), &Config{
		Enabled: true,
		CAFile:  path.Join(t.TempDir(), "does-not-exist.pem"),
	}, ClientType)
	assert.Regexp(t, "CH010601", err)
}

func TestErrInvalidCA(t *testing.T) {
	_, err := BuildTLSConfig(context.Background(), &Config{
		Enabled: true,
		CA:      "not PEM",
	}, ClientType)
	assert.Regexp(t, "CH010600", err)
}

func TestErrInvalidKeyPairFile(t *testing.T) {
	_, err := BuildTLSConfig(context.Background(), &Config{
		Enabled:  true,
		CertFile: path.Join(t.TempDir(), "cert-does-not-exist.pem"),
		KeyFile:  path.Join(t.TempDir(), "key-does-not-exist.pem"),
	}, ClientType)
	assert.Regexp(t, "CH010602", err)
}

func TestErrInvalidKeyPair(t *testing.T) {
	_, err := BuildTLSConfig(context.Background(), &Config{
		Enabled: true,
		Cert:    "not a cert",
		Key:     "not a key",
	}, ClientType)
	assert.Regexp(t, "CH010602", err)
}

func TestMTLSOk(t *testing.T) {
	ctx := context.Background()

	serverCert, serverKey := buildSelfSignedTLSKeyPair(t, pkix.Name{CommonName: "server.example.com"})
	clientCert, clientKey := buildSelfSignedTLSKeyPair(t, pkix.Name{CommonName: "client.example.com"})

	serverConf, err := BuildTLSConfig(ctx, &Config{
		Enabled:    true,
		CA:         clientCert,
		Cert:       serverCert,
		Key:        serverKey,
		ClientAuth: true,
	}, ServerType)
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, serverConf.ClientAuth)

	listener, err := tls.Listen("tcp4", "127.0.0.1:0", serverConf)
	require.NoError(t, err)
	acceptDone := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			// force the handshake to complete before closing
			_, err = conn.Read(make([]byte, 1))
		}
		acceptDone <- err
	}()

	clientConf, err := BuildTLSConfig(ctx, &Config{
		Enabled: true,
		CA:      serverCert,
		Cert:    clientCert,
		Key:     clientKey,
	}, ClientType)
	require.NoError(t, err)
	clientConf.ServerName = "server.example.com"
	clientConf.InsecureSkipVerify = true

	conn, err := tls.Dial("tcp4", listener.Addr().String(), clientConf)
	require.NoError(t, err)
	err = conn.Handshake()
	require.NoError(t, err)
	_, _ = conn.Write([]byte{0x00})
	conn.Close()
	<-acceptDone
	listener.Close()
}
