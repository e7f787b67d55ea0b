// Package engine orchestrates chat sessions and the lifecycle of tool jobs.
//
// An Engine owns a set of sessions. Each session has a conversation log and,
// per tool, at most one job that is not yet finished (its slot). User input
// enters through Handle, which appends the user message and then either
// answers through the default responder or validates the input for a tool and
// starts a job:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Logger = logging.NewLogger(nil)
//	})
//	id, _ := eng.StartSession()
//	out, err := eng.Handle(ctx, id, core.Input{Text: "/code python reverse a string"})
//
// Jobs run on scheduler goroutines. A job waits in StatusQueued until the
// scheduler admits it (Config.MaxConcurrentJobs), runs with the per tool
// deadline and ends in exactly one terminal status:
//
//	queued ──▶ running ──▶ succeeded | failed | timed_out
//	   │          │
//	   └──────────┴──▶ cancelled
//
// The terminal commit, the result message and the release of the tool slot
// happen under the session lock in that order. Observers therefore never see
// a free slot without the result message, and a message never references a
// job that has not finished. Cancelled jobs add no message.
//
// Hooks (see HookManager) observe appended messages and job transitions; the
// CLI uses them to print the conversation as it grows.
package engine
