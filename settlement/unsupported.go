package settlement

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-vault/core"
)

// UnsupportedSettler fails every settlement with a stable message. Registries
// install it for channels that are declared but not configured, so a
// withdrawal over such a channel fails cleanly (and rolls back) instead of
// silently succeeding.
type UnsupportedSettler struct {
	channel string
	reason  string
}

func NewUnsupportedSettler(channel string, reason string) *UnsupportedSettler {
	return &UnsupportedSettler{
		channel: strings.TrimSpace(strings.ToLower(channel)),
		reason:  strings.TrimSpace(reason),
	}
}

func (s *UnsupportedSettler) Channel() string {
	if s == nil {
		return ""
	}
	return s.channel
}

func (s *UnsupportedSettler) Settle(context.Context, core.Settlement) error {
	if s == nil {
		return fmt.Errorf("settlement: settler is nil")
	}
	if s.reason != "" {
		return fmt.Errorf("settlement: %s rail is not configured: %s", s.channel, s.reason)
	}
	return fmt.Errorf("settlement: %s rail is not configured", s.channel)
}

var _ core.Settler = (*UnsupportedSettler)(nil)
