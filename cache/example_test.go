package cache_test

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonwraymond/tiercache/cache"
)

func ExampleTieredKeyer_Key() {
	keyer, _ := cache.NewTieredKeyer(cache.DefaultTextSizeTiers(), cache.DefaultHashAlgorithm)

	// Option order never changes the key.
	a, _ := keyer.Key("summarize", "short text", map[string]any{"model": "small", "lang": "en"})
	b, _ := keyer.Key("summarize", "short text", map[string]any{"lang": "en", "model": "small"})

	fmt.Println("deterministic:", a == b)
	// Output:
	// deterministic: true
}

func ExampleNewCodec() {
	codec, _ := cache.NewCodec(1000, 6)

	small := []byte("tiny")
	_, compressed, _, _ := codec.Encode(small)
	fmt.Println("small compressed:", compressed)

	big := make([]byte, 2000)
	_, compressed, _, _ = codec.Encode(big)
	fmt.Println("big compressed:", compressed)
	// Output:
	// small compressed: false
	// big compressed: true
}

func ExamplePolicy_Resolve() {
	policy := cache.Policy{
		DefaultTTL: time.Hour,
		OperationTTLs: map[string]time.Duration{
			"sentiment": 24 * time.Hour,
		},
	}

	fmt.Println(policy.Resolve("sentiment"))
	fmt.Println(policy.Resolve("unknown"))
	// Output:
	// 24h0m0s
	// 1h0m0s
}

func ExamplePresetNames() {
	names := cache.PresetNames()
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
	// Output:
	// ai-development
	// ai-production
	// development
	// minimal
	// production
	// simple
}

func ExampleResolveConfig() {
	cfg, _ := cache.ResolveConfig(cache.Options{
		Preset:     "development",
		CustomJSON: []byte(`{"l1_max_entries": 75}`),
	})

	fmt.Println("preset:", cfg.Preset)
	fmt.Println("l1 entries:", cfg.L1MaxEntries)
	// Output:
	// preset: development
	// l1 entries: 75
}
