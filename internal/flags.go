package internal

// flags holds the per node bookkeeping bits
type flags uint8

const (
	flagStream  flags = 1 << iota // node is a stream and has no committed value
	flagUpdated                   // node holds a pending value in the current transaction
	flagInQueue                   // node is waiting in the depth queue
)

func (f flags) has(flag flags) bool {
	return f&flag != 0
}

func (f *flags) set(flag flags) {
	*f |= flag
}

func (f *flags) clear(flag flags) {
	*f &^= flag
}
