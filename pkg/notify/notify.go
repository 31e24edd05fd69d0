// Package notify sends login and generation results to configured webhooks or
// a custom script. delivery is best-effort, errors are logged and dropped.
package notify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ntfy "github.com/go-pkgz/notify"
)

// Service orchestrates sending notifications through configured channels.
type Service struct {
	webhook   ntfy.Notifier
	urls      []string
	custom    *customChannel // optional custom script channel
	timeoutMs int
	hostname  string // resolved once at creation via os.Hostname()
	log       logger
}

// Params holds configuration for creating a notification Service.
type Params struct {
	WebhookURLs  []string
	CustomScript string
	TimeoutMs    int
}

// logger interface for dependency injection.
type logger interface {
	Print(format string, args ...any)
	Error(format string, args ...any)
}

// Result holds completion data for notifications.
type Result struct {
	Status   string   `json:"status"` // "success" or "failure"
	Command  string   `json:"command"`
	Role     string   `json:"role,omitempty"`
	Duration string   `json:"duration"`
	EnvVars  []string `json:"env_vars,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// New creates a notification Service from the given Params.
// returns nil if no channels are configured, callers rely on nil-safe Send.
func New(p Params, log logger) *Service {
	if len(p.WebhookURLs) == 0 && p.CustomScript == "" {
		return nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	svc := &Service{
		urls:      p.WebhookURLs,
		timeoutMs: p.TimeoutMs,
		hostname:  hostname,
		log:       log,
	}
	if svc.timeoutMs <= 0 {
		svc.timeoutMs = 5000
	}
	if len(p.WebhookURLs) > 0 {
		svc.webhook = ntfy.NewWebhook(ntfy.WebhookParams{Timeout: time.Duration(svc.timeoutMs) * time.Millisecond})
	}
	if p.CustomScript != "" {
		svc.custom = newCustomChannel(p.CustomScript)
	}
	return svc
}

// Send delivers a notification for the given result to all configured
// channels. nil-safe on receiver. errors are logged but never returned.
func (s *Service) Send(ctx context.Context, r Result) {
	if s == nil {
		return
	}

	timeout := time.Duration(s.timeoutMs) * time.Millisecond
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg := s.formatMessage(r)
	for _, u := range s.urls {
		if err := s.webhook.Send(sendCtx, u, msg); err != nil {
			s.log.Error("webhook notification failed for %s: %v", u, err)
		}
	}

	if s.custom != nil {
		if err := s.custom.send(sendCtx, r); err != nil {
			s.log.Error("custom notification failed: %v", err)
		}
	}
}

// formatMessage creates a plain text notification message from the result.
func (s *Service) formatMessage(r Result) string {
	var b strings.Builder

	if r.Status == "success" {
		fmt.Fprintf(&b, "testwright %s completed on %s\n", r.Command, s.hostname)
	} else {
		fmt.Fprintf(&b, "testwright %s failed on %s\n", r.Command, s.hostname)
	}

	b.WriteString("\n")

	if r.Role != "" {
		fmt.Fprintf(&b, "role:     %s\n", r.Role)
	}
	if r.Duration != "" {
		fmt.Fprintf(&b, "duration: %s\n", r.Duration)
	}
	if len(r.EnvVars) > 0 {
		fmt.Fprintf(&b, "env vars: %s\n", strings.Join(r.EnvVars, ", "))
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "error:    %s\n", r.Error)
	}

	return b.String()
}
