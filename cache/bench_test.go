package cache

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func BenchmarkMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(1000)
	c.Set(ctx, "key", []byte("value"), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "key")
	}
}

func BenchmarkMemoryCache_Set(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(1000)
	value := []byte("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i%2000), value, time.Hour)
	}
}

func BenchmarkMemoryCache_GetParallel(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(1000)
	c.Set(ctx, "key", []byte("value"), time.Hour)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Get(ctx, "key")
		}
	})
}

func BenchmarkTieredKeyer_SmallPayload(b *testing.B) {
	k, _ := NewTieredKeyer(DefaultTextSizeTiers(), DefaultHashAlgorithm)
	opts := map[string]any{"model": "small", "temperature": 0.2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Key("summarize", "short payload", opts)
	}
}

func BenchmarkTieredKeyer_LargePayload(b *testing.B) {
	k, _ := NewTieredKeyer(DefaultTextSizeTiers(), DefaultHashAlgorithm)
	payload := strings.Repeat("large document text ", 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Key("summarize", payload, nil)
	}
}

func BenchmarkCodec_EncodeFrame(b *testing.B) {
	c, _ := NewCodec(1000, 6)
	value := []byte(strings.Repeat("compressible content ", 200))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.EncodeFrame(value)
	}
}

func BenchmarkCodec_DecodeFrame(b *testing.B) {
	c, _ := NewCodec(1000, 6)
	frame, _ := c.EncodeFrame([]byte(strings.Repeat("compressible content ", 200)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.DecodeFrame(frame)
	}
}

func BenchmarkGlobMatch(b *testing.B) {
	pattern := "summarize|*|opts:*"
	key := "summarize|" + strings.Repeat("x", 80) + "|opts:deadbeefdeadbeef"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		globMatch(pattern, key)
	}
}
