/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"Comment","action":"create"}`)
	const secret = "webhook-secret"

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		wantErr   bool
	}{{
		name:      "valid signature",
		body:      body,
		signature: sign(body, secret),
		secret:    secret,
	}, {
		name:      "missing signature",
		body:      body,
		signature: "",
		secret:    secret,
		wantErr:   true,
	}, {
		name:      "wrong secret",
		body:      body,
		signature: sign(body, "other-secret"),
		secret:    secret,
		wantErr:   true,
	}, {
		name:      "garbage signature",
		body:      body,
		signature: "not-hex",
		secret:    secret,
		wantErr:   true,
	}, {
		name:      "no secret configured skips verification",
		body:      body,
		signature: "",
		secret:    "",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(context.Background(), tt.body, tt.signature, tt.secret)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Any single-byte mutation of the body must flip verification to
// rejection.
func TestVerifySignatureBodyMutation(t *testing.T) {
	body := []byte(`{"type":"Comment","action":"create","data":{"id":"c-1"}}`)
	const secret = "webhook-secret"
	signature := sign(body, secret)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.ErrorIs(t, VerifySignature(context.Background(), mutated, signature, secret), ErrBadSignature,
			"mutation at byte %d should be rejected", i)
	}
}
