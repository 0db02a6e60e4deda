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
	"errors"

	"github.com/chainguard-dev/clog"
)

// SignatureHeader is the request header Linear uses to carry the hex
// HMAC-SHA256 digest of the raw body.
const SignatureHeader = "linear-signature"

// ErrBadSignature is returned when the signature header is missing or
// does not match the computed digest.
var ErrBadSignature = errors.New("invalid webhook signature")

// VerifySignature checks the hex HMAC-SHA256 digest of the raw request
// body against the supplied header value. An empty secret disables
// verification entirely; that is a development-mode bypass and is
// logged loudly.
func VerifySignature(ctx context.Context, body []byte, signature, secret string) error {
	if secret == "" {
		clog.FromContext(ctx).Warn("Webhook secret not configured, skipping signature verification")
		return nil
	}

	if signature == "" {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}

	return nil
}
