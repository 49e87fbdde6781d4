package cli

import (
	"errors"
	"fmt"

	"github.com/alnah/go-dictation/internal/config"
)

// Provider represents a validated speech-to-text backend.
// Zero value is invalid and must not be used.
// Use ParseProvider to create from user input, or the pre-parsed constants.
type Provider struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Provider{}

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// Pre-parsed provider constants for use in code.
var (
	OpenAIProvider = Provider{name: config.ProviderOpenAI}
	LocalProvider  = Provider{name: config.ProviderLocal}
)

// ParseProvider validates and parses a provider name string.
// Returns ErrInvalidProvider if the name is not recognized.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "":
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	case config.ProviderOpenAI, config.ProviderLocal:
		return Provider{name: s}, nil
	}
	return Provider{}, fmt.Errorf("unknown provider %q (use '%s' or '%s'): %w",
		s, config.ProviderOpenAI, config.ProviderLocal, ErrInvalidProvider)
}

// String returns the provider name string.
func (p Provider) String() string {
	return p.name
}

// IsOpenAI returns true for the hosted Whisper API.
func (p Provider) IsOpenAI() bool {
	return p.name == config.ProviderOpenAI
}

// IsLocal returns true for a self-hosted Whisper ASR service.
func (p Provider) IsLocal() bool {
	return p.name == config.ProviderLocal
}

// NeedsAPIKey reports whether the provider authenticates with OPENAI_API_KEY.
func (p Provider) NeedsAPIKey() bool {
	return p.IsOpenAI()
}
