package core

// Frame is one encoded protocol message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It fails when the queue is full
	// or the connection is closed.
	TrySend(Frame) error
	Close()
}
