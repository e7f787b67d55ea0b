package conversation

import (
	"iter"
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/core"
)

// Options configures a Log.
type Options struct {
	// Capacity bounds the number of messages. Appending beyond it fails with
	// core.ErrLogFull. Zero means unbounded.
	Capacity int
	// Clock stamps messages appended without a CreatedAt.
	Clock func() time.Time
}

// Log is an append-only, ordered sequence of messages. It is safe for
// concurrent access; Append assigns the sequence number under the same lock
// as the write, so no two appends observe the same number.
type Log struct {
	mu       sync.RWMutex
	messages []core.Message
	seq      uint64
	opts     Options
}

// NewLog creates an empty log.
func NewLog(optFns ...func(o *Options)) *Log {
	opts := Options{Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Log{opts: opts}
}

// Append stores msg as the newest entry and returns its sequence number.
// Missing ID and CreatedAt are filled in.
func (l *Log) Append(msg core.Message) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opts.Capacity > 0 && len(l.messages) >= l.opts.Capacity {
		return 0, core.ErrLogFull
	}
	l.seq++
	msg.Seq = l.seq
	if msg.ID == "" {
		msg.ID = core.NewID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = l.opts.Clock().UTC()
	}
	l.messages = append(l.messages, msg)
	return msg.Seq, nil
}

// Snapshot returns a copy of all messages in sequence order.
func (l *Log) Snapshot() []core.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Since returns a copy of the messages with a sequence number greater than
// seq.
func (l *Log) Since(seq uint64) []core.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// sequence numbers are contiguous from 1, so seq doubles as an index
	if seq >= uint64(len(l.messages)) {
		return []core.Message{}
	}
	out := make([]core.Message, len(l.messages)-int(seq))
	copy(out, l.messages[seq:])
	return out
}

// All returns a lazy iterator over the messages present when All was called.
// The sequence is finite and may be ranged over any number of times; later
// appends are not observed by it.
func (l *Log) All() iter.Seq[core.Message] {
	n := l.Len()
	return func(yield func(core.Message) bool) {
		for i := 0; i < n; i++ {
			l.mu.RLock()
			m := l.messages[i]
			l.mu.RUnlock()
			if !yield(m) {
				return
			}
		}
	}
}

// Len returns the number of appended messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// LastSeq returns the sequence number of the newest message, zero if empty.
func (l *Log) LastSeq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}
