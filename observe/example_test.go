package observe_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/tiercache/observe"
)

func ExampleCacheMeta_SpanName() {
	meta := observe.CacheMeta{Name: "responses", Preset: "ai-production"}

	fmt.Println(meta.SpanName("get"))
	fmt.Println(meta.SpanName("invalidate"))
	// Output:
	// cache.get
	// cache.invalidate
}

func ExampleNewObserver() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "tiercache",
		Version:     "1.0.0",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer obs.Shutdown(context.Background())

	fmt.Println("tracer ready:", obs.Tracer() != nil)
	fmt.Println("meter ready:", obs.Meter() != nil)
	// Output:
	// tracer ready: true
	// meter ready: true
}

func ExampleParseLogLevel() {
	fmt.Println(observe.ParseLogLevel("debug"))
	fmt.Println(observe.ParseLogLevel("unknown"))
	// Output:
	// debug
	// info
}
