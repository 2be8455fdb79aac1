package core

import (
	"fmt"
	"strings"
	"time"
)

type SettlementConfig struct {
	Channel string        `koanf:"channel" mapstructure:"channel"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

type EventsConfig struct {
	BufferSize int `koanf:"buffer_size" mapstructure:"buffer_size"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Settlement  SettlementConfig `koanf:"settlement" mapstructure:"settlement"`
	Events      EventsConfig     `koanf:"events" mapstructure:"events"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "vault",
		Settlement: SettlementConfig{
			Channel: "noop",
		},
		Events: EventsConfig{
			BufferSize: defaultEventLogMaxEntries,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Settlement.Timeout < 0 {
		return fmt.Errorf("core: settlement.timeout must not be negative")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("core: events.buffer_size must not be negative")
	}
	return nil
}
