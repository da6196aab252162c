// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"

	"github.com/fernet/fernet-go"
)

// KeyManager turns a credential bundle into an opaque, tamper-proof API
// key and back, using Fernet symmetric tokens. Tokens do not expire on
// their own; session lifetime is governed by the connection pool TTL.
type KeyManager struct {
	key *fernet.Key
}

// NewKeyManager creates a KeyManager from an encoded Fernet key.
func NewKeyManager(encodedKey string) (*KeyManager, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, &CredentialsError{Reason: "invalid encryption key", Cause: err}
	}
	return &KeyManager{key: key}, nil
}

// GenerateKey produces a fresh encoded Fernet key. Keys generated at
// startup are process-local: API keys minted with them become invalid
// on restart.
func GenerateKey() string {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		// Generate only fails when the OS entropy source is broken.
		panic("auth: failed to generate encryption key: " + err.Error())
	}
	return key.Encode()
}

// KeyFingerprint returns a short loggable fingerprint of an encoded key
// without revealing it.
func KeyFingerprint(encodedKey string) string {
	if len(encodedKey) <= 16 {
		return encodedKey
	}
	return encodedKey[:8] + "..." + encodedKey[len(encodedKey)-8:]
}

// Encrypt serializes and encrypts credentials into an API key.
func (m *KeyManager) Encrypt(creds *Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return "", &CredentialsError{Reason: "failed to serialize credentials", Cause: err}
	}

	token, err := fernet.EncryptAndSign(payload, m.key)
	if err != nil {
		return "", &CredentialsError{Reason: "failed to encrypt credentials", Cause: err}
	}
	return string(token), nil
}

// Decrypt verifies and decrypts an API key back into credentials. A
// token minted with a different key, or tampered with, is rejected.
func (m *KeyManager) Decrypt(apiKey string) (*Credentials, error) {
	payload := fernet.VerifyAndDecrypt([]byte(apiKey), 0, []*fernet.Key{m.key})
	if payload == nil {
		return nil, &CredentialsError{
			Reason: "invalid API key: decryption failed (the key may have been generated with a different encryption key)",
		}
	}

	var creds Credentials
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, &CredentialsError{Reason: "invalid API key payload", Cause: err}
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}
