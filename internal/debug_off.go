//go:build frp_nodebug

package internal

const debug = false
