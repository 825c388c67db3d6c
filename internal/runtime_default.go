//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var engines sync.Map

// Default returns the engine bound to the calling goroutine, creating it on
// first use.
func Default() *Engine {
	gid := currentGoroutine()

	if e, ok := engines.Load(gid); ok {
		return e.(*Engine)
	}

	e := NewEngine()
	engines.Store(gid, e)
	return e
}

func currentGoroutine() int64 {
	return goid.Get()
}
