//go:build !frp_nodebug

package internal

// debug enables invariant assertions. Build with -tags frp_nodebug to drop them.
const debug = true
