package cache

import (
	"fmt"
	"time"
)

// AIPreset is the optional AI sub-block of a preset: tier bounds for text
// payload key handling, per-operation TTLs, and the digest algorithm.
type AIPreset struct {
	TextSizeTiers TextSizeTiers
	OperationTTLs map[string]time.Duration
	HashAlgorithm string
}

// Preset is a named bundle of defaults for a deployment scenario.
// Presets are immutable once loaded; PresetByName returns a deep copy.
type Preset struct {
	Name                      string
	DefaultTTL                time.Duration
	L1MaxEntries              int
	CompressionThresholdBytes int
	CompressionLevel          int
	MaxConnections            int
	ConnectionTimeout         time.Duration
	SocketTimeout             time.Duration
	AI                        *AIPreset
}

// defaultOperationTTLs are the per-operation TTLs the AI presets ship with.
func defaultOperationTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		"summarize":  2 * time.Hour,
		"sentiment":  24 * time.Hour,
		"key_points": 2 * time.Hour,
		"questions":  1 * time.Hour,
		"qa":         30 * time.Minute,
	}
}

var presets = map[string]Preset{
	"minimal": {
		Name:                      "minimal",
		DefaultTTL:                15 * time.Minute,
		L1MaxEntries:              25,
		CompressionThresholdBytes: 10000,
		CompressionLevel:          3,
		MaxConnections:            2,
		ConnectionTimeout:         2 * time.Second,
		SocketTimeout:             2 * time.Second,
	},
	"simple": {
		Name:                      "simple",
		DefaultTTL:                time.Hour,
		L1MaxEntries:              100,
		CompressionThresholdBytes: 1000,
		CompressionLevel:          6,
		MaxConnections:            5,
		ConnectionTimeout:         5 * time.Second,
		SocketTimeout:             3 * time.Second,
	},
	"development": {
		Name:                      "development",
		DefaultTTL:                10 * time.Minute,
		L1MaxEntries:              50,
		CompressionThresholdBytes: 2000,
		CompressionLevel:          4,
		MaxConnections:            3,
		ConnectionTimeout:         2 * time.Second,
		SocketTimeout:             2 * time.Second,
	},
	"production": {
		Name:                      "production",
		DefaultTTL:                2 * time.Hour,
		L1MaxEntries:              500,
		CompressionThresholdBytes: 1000,
		CompressionLevel:          6,
		MaxConnections:            20,
		ConnectionTimeout:         5 * time.Second,
		SocketTimeout:             3 * time.Second,
	},
	"ai-development": {
		Name:                      "ai-development",
		DefaultTTL:                30 * time.Minute,
		L1MaxEntries:              100,
		CompressionThresholdBytes: 2000,
		CompressionLevel:          4,
		MaxConnections:            3,
		ConnectionTimeout:         2 * time.Second,
		SocketTimeout:             2 * time.Second,
		AI: &AIPreset{
			TextSizeTiers: DefaultTextSizeTiers(),
			OperationTTLs: defaultOperationTTLs(),
			HashAlgorithm: DefaultHashAlgorithm,
		},
	},
	"ai-production": {
		Name:                      "ai-production",
		DefaultTTL:                2 * time.Hour,
		L1MaxEntries:              1000,
		CompressionThresholdBytes: 1000,
		CompressionLevel:          6,
		MaxConnections:            20,
		ConnectionTimeout:         5 * time.Second,
		SocketTimeout:             3 * time.Second,
		AI: &AIPreset{
			TextSizeTiers: DefaultTextSizeTiers(),
			OperationTTLs: defaultOperationTTLs(),
			HashAlgorithm: DefaultHashAlgorithm,
		},
	},
}

// PresetNames lists the available preset names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

// PresetByName returns a copy of the named preset.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p.clone(), nil
}

// clone deep-copies the preset so callers can never mutate the table.
func (p Preset) clone() Preset {
	out := p
	if p.AI != nil {
		ai := *p.AI
		if p.AI.OperationTTLs != nil {
			ai.OperationTTLs = make(map[string]time.Duration, len(p.AI.OperationTTLs))
			for k, v := range p.AI.OperationTTLs {
				ai.OperationTTLs[k] = v
			}
		}
		out.AI = &ai
	}
	return out
}
