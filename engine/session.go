package engine

import (
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/conversation"
)

// session is the per conversation state. mu is the single writer lock for
// the log, the session's job statuses and its tool slots.
type session struct {
	id        string
	mu        sync.Mutex
	log       *conversation.Log
	model     string
	startedAt time.Time
	// closed is set when the session ended or its log failed; no further
	// messages are appended.
	closed bool
}
