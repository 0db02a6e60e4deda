/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/tidegate/linear-agent/metrics"
)

// maxBodyBytes bounds the webhook body we are willing to read.
const maxBodyBytes = 1 << 20

// TaskFunc processes one qualifying comment. The handler invokes it on
// its own goroutine with a context detached from the request, so the
// delivery response never waits on the task.
type TaskFunc func(ctx context.Context, comment *CommentPayload)

// Handler serves POST /webhook/linear.
type Handler struct {
	secret  string
	trigger string
	run     TaskFunc
}

// NewHandler constructs the webhook handler. An empty secret disables
// signature verification (development mode).
func NewHandler(secret, trigger string, run TaskFunc) (*Handler, error) {
	if trigger == "" {
		return nil, errors.New("trigger token cannot be empty")
	}
	if run == nil {
		return nil, errors.New("task func cannot be nil")
	}
	return &Handler{secret: secret, trigger: trigger, run: run}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := clog.FromContext(ctx)

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.With("error", err).Warn("Failed to read webhook body")
		metrics.Webhooks.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	if err := VerifySignature(ctx, body, r.Header.Get(SignatureHeader), h.secret); err != nil {
		log.Warn("Rejecting webhook with bad signature")
		metrics.Webhooks.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	event, err := ParseEvent(body)
	if err != nil {
		log.With("error", err).Warn("Rejecting malformed webhook payload")
		metrics.Webhooks.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	classification, err := Classify(event, h.trigger)
	if err != nil {
		log.With("error", err).Warn("Rejecting unclassifiable webhook payload")
		metrics.Webhooks.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if !classification.Actionable {
		log.With("type", event.Type).
			With("action", event.Action).
			With("reason", classification.Reason).
			Info("Ignoring webhook event")
		metrics.Webhooks.WithLabelValues("ignored").Inc()
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ignored",
			"reason": classification.Reason,
		})
		return
	}

	comment := classification.Comment
	log.With("issue", comment.IssueID).
		With("comment", comment.ID).
		Info("Accepted webhook, launching task")
	metrics.Webhooks.WithLabelValues("accepted").Inc()

	// Detach from the request context so the response can return while
	// the task runs. Context values (the logger) survive detachment.
	taskCtx := context.WithoutCancel(ctx)
	go h.run(taskCtx, comment)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HealthHandler serves GET /health.
func HealthHandler(version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
