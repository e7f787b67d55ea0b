package testutil

import (
	"sync"

	"github.com/hupe1980/toolmesh/core"
)

// Recorder collects messages delivered to it, e.g. from an engine message
// hook, in delivery order.
type Recorder struct {
	mu   sync.Mutex
	msgs []core.Message
}

// Record stores msg.
func (r *Recorder) Record(_ string, msg core.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []core.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Message(nil), r.msgs...)
}

// Roles returns the roles of msgs in order.
func Roles(msgs []core.Message) []core.Role {
	out := make([]core.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

// ByJob returns the messages referring to jobID.
func ByJob(msgs []core.Message, jobID string) []core.Message {
	var out []core.Message
	for _, m := range msgs {
		if m.RelatedJobID == jobID {
			out = append(out, m)
		}
	}
	return out
}
