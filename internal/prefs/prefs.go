// Package prefs holds the per-user widget configuration as one
// explicit struct instead of scattered flags.
package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
)

const stateKey = "preferences"

// Preferences is the full set of user-tunable widget settings.
type Preferences struct {
	// Response shaping sent with every chat request.
	Tone        string  `json:"tone"`       // friendly, formal, concise
	Length      string  `json:"length"`     // short, medium, long
	Creativity  string  `json:"creativity"` // low, balanced, high
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	TopK        int     `json:"topK"`
	MaxTokens   int     `json:"maxTokens"`

	// Delivery.
	StreamEnabled bool `json:"streamEnabled"`

	// Display and accessibility.
	Theme        string `json:"theme"` // light, dark, system
	FontScale    int    `json:"fontScale"`
	HighContrast bool   `json:"highContrast"`
	SoundEnabled bool   `json:"soundEnabled"`
	Language     string `json:"language"`
}

// Default returns the documented defaults for a fresh identity.
func Default() Preferences {
	return Preferences{
		Tone:          "friendly",
		Length:        "medium",
		Creativity:    "balanced",
		Temperature:   0.7,
		TopP:          0.9,
		TopK:          40,
		MaxTokens:     1024,
		StreamEnabled: true,
		Theme:         "system",
		FontScale:     100,
		HighContrast:  false,
		SoundEnabled:  true,
		Language:      "en",
	}
}

// Load reads the stored preferences for a namespace, falling back to
// defaults when none are stored or the stored blob is unreadable.
func Load(state *localstate.Store, namespace string) Preferences {
	raw, ok, err := state.Get(namespace, stateKey)
	if err != nil || !ok {
		return Default()
	}
	p := Default()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Default()
	}
	return p
}

// Save persists preferences for a namespace.
func Save(state *localstate.Store, namespace string, p Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := state.Set(namespace, stateKey, string(raw)); err != nil {
		return fmt.Errorf("persist preferences: %w", err)
	}
	return nil
}
