package console

import "sync/atomic"

// Stats counts interpreter activity. It is safe to read from other
// goroutines while a session runs.
type Stats struct {
	commands atomic.Uint32
	failures atomic.Uint32
	bytes    atomic.Uint32
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Commands uint32 // dispatched non-empty lines
	Failures uint32 // lines that ended in a usage, unknown or transport error
	Bytes    uint32 // flash bytes sent as DATA lines
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Commands: s.commands.Load(),
		Failures: s.failures.Load(),
		Bytes:    s.bytes.Load(),
	}
}
