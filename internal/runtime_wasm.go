//go:build wasm

package internal

import "sync"

var once sync.Once
var defaultEngine *Engine

func Default() *Engine {
	once.Do(func() {
		defaultEngine = NewEngine()
	})

	return defaultEngine
}

// goroutine ids are not tracked on wasm, concurrent use goes unchecked
func currentGoroutine() int64 {
	return 0
}
