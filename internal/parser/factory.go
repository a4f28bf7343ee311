package parser

import (
	"fmt"
	"sort"

	"billdoc/internal/config"
	"billdoc/internal/port"
)

// ProviderFactory builds an extraction provider from its config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// providers maps a provider name ("gemini", "claude", "openai") to its factory.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders lists the registered provider names in sorted order.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider %q (registered: %v)", cfg.Provider, RegisteredProviders())
	}
	return factory(cfg)
}

// NewChain builds the extraction parser for an ordered provider chain. A single
// provider is returned as is; longer chains are wrapped in a FallbackParser.
func NewChain(chain []*config.ParserProviderConfig) (port.DocumentParser, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("no parser providers configured")
	}

	parsers := make([]port.DocumentParser, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		p, err := NewParser(pc)
		if err != nil {
			return nil, fmt.Errorf("initializing %s parser: %w", pc.Provider, err)
		}
		parsers = append(parsers, p)
		names = append(names, pc.Provider)
	}

	if len(parsers) == 1 {
		return parsers[0], nil
	}
	return NewFallbackParser(parsers, names), nil
}
