package core

// Frame is one encoded outbound message.
type Frame []byte

// ConnID is the opaque token of one live transport channel.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: delivery is fire-and-forget.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
