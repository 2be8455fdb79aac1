// Package settlement holds the outbound value rails a vault can deliver
// withdrawals through. Every rail implements core.Settler and must be treated
// as untrusted during execution: a rail may synchronously call back into the
// vault before returning.
package settlement

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-vault/core"
)

const ChannelNoop = "noop"

type SettlerFactory func(config map[string]any) (core.Settler, error)

type Registry struct {
	mu        sync.RWMutex
	settlers  map[string]core.Settler
	factories map[string]SettlerFactory
}

func NewRegistry() *Registry {
	return &Registry{
		settlers:  map[string]core.Settler{},
		factories: map[string]SettlerFactory{},
	}
}

// NewDefaultRegistry preinstalls the noop rail so a vault with no outbound
// delivery configured still settles withdrawals.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(ChannelNoop, core.NopSettler{})
	return registry
}

func (r *Registry) Register(channel string, settler core.Settler) error {
	if r == nil {
		return fmt.Errorf("settlement: registry is nil")
	}
	if settler == nil {
		return fmt.Errorf("settlement: settler is nil")
	}
	channel = normalizeChannel(channel)
	if channel == "" {
		return fmt.Errorf("settlement: channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.settlers[channel]; exists {
		return fmt.Errorf("settlement: channel %q already registered", channel)
	}
	r.settlers[channel] = settler
	return nil
}

func (r *Registry) RegisterFactory(channel string, factory SettlerFactory) error {
	if r == nil {
		return fmt.Errorf("settlement: registry is nil")
	}
	channel = normalizeChannel(channel)
	if channel == "" {
		return fmt.Errorf("settlement: channel is required")
	}
	if factory == nil {
		return fmt.Errorf("settlement: settler factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[channel]; exists {
		return fmt.Errorf("settlement: settler factory channel %q already registered", channel)
	}
	r.factories[channel] = factory
	return nil
}

func (r *Registry) Build(channel string, config map[string]any) (core.Settler, error) {
	if r == nil {
		return nil, fmt.Errorf("settlement: registry is nil")
	}
	channel = normalizeChannel(channel)
	if channel == "" {
		return nil, fmt.Errorf("settlement: channel is required")
	}

	r.mu.RLock()
	settler, ok := r.settlers[channel]
	factory := r.factories[channel]
	r.mu.RUnlock()
	if ok {
		return settler, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("settlement: channel %q not registered", channel)
	}
	built, err := factory(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("settlement: factory for %q returned nil settler", channel)
	}
	return built, nil
}

func (r *Registry) Get(channel string) (core.Settler, bool) {
	if r == nil {
		return nil, false
	}
	channel = normalizeChannel(channel)
	r.mu.RLock()
	defer r.mu.RUnlock()
	settler, ok := r.settlers[channel]
	return settler, ok
}

func (r *Registry) Channels() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]string, 0, len(r.settlers))
	for channel := range r.settlers {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

func normalizeChannel(channel string) string {
	return strings.TrimSpace(strings.ToLower(channel))
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}
