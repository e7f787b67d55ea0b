package engine

import (
	"sync"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
)

// HookType identifies the point at which a hook runs.
type HookType string

const (
	// HookMessageAppended runs after a message was appended to a session log.
	HookMessageAppended HookType = "message_appended"

	// HookJobStarted runs after a job entered StatusRunning.
	HookJobStarted HookType = "job_started"

	// HookJobFinished runs after a job reached a terminal status, its result
	// message (if any) was appended and its slot was released.
	HookJobFinished HookType = "job_finished"
)

// HookContext carries the subject of a hook invocation. Message is set for
// HookMessageAppended, Job for the job hooks.
type HookContext struct {
	Type      HookType
	SessionID string
	Message   *core.Message
	Job       *core.Job
}

// Hook observes engine activity.
//
// Hooks run synchronously while the session lock is held, so they see
// messages in log order. They must not call Handle, Cancel, CancelTool,
// SelectModel or EndSession for the same session.
type Hook interface {
	Type() HookType
	Execute(hc HookContext) error
}

// FunctionHook adapts a function to Hook.
type FunctionHook struct {
	hookType HookType
	fn       func(hc HookContext) error
}

// NewFunctionHook creates a hook running fn for hookType.
func NewFunctionHook(hookType HookType, fn func(hc HookContext) error) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

func (h *FunctionHook) Type() HookType { return h.hookType }

func (h *FunctionHook) Execute(hc HookContext) error { return h.fn(hc) }

// OnMessage is a shorthand for a HookMessageAppended hook.
func OnMessage(fn func(sessionID string, msg core.Message)) *FunctionHook {
	return NewFunctionHook(HookMessageAppended, func(hc HookContext) error {
		fn(hc.SessionID, *hc.Message)
		return nil
	})
}

// LoggingHook logs every invocation of its hook type at debug level.
type LoggingHook struct {
	hookType HookType
	logger   logging.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(hookType HookType, logger logging.Logger) *LoggingHook {
	return &LoggingHook{hookType: hookType, logger: logger}
}

func (h *LoggingHook) Type() HookType { return h.hookType }

func (h *LoggingHook) Execute(hc HookContext) error {
	args := []any{"hook", hc.Type, "session_id", hc.SessionID}
	if hc.Message != nil {
		args = append(args, "seq", hc.Message.Seq, "role", hc.Message.Role)
	}
	if hc.Job != nil {
		args = append(args, "job_id", hc.Job.ID, "status", hc.Job.Status)
	}
	h.logger.Debug("hook.executed", args...)
	return nil
}

// HookManager holds hooks by type.
type HookManager struct {
	mu    sync.RWMutex
	hooks map[HookType][]Hook
}

// NewHookManager creates an empty manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: make(map[HookType][]Hook)}
}

// Register adds a hook.
func (m *HookManager) Register(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[h.Type()] = append(m.hooks[h.Type()], h)
}

// run executes the hooks of hc.Type in registration order. Hook errors are
// logged and do not stop later hooks.
func (m *HookManager) run(hc HookContext, logger logging.Logger) {
	m.mu.RLock()
	hooks := m.hooks[hc.Type]
	m.mu.RUnlock()

	for _, h := range hooks {
		if err := h.Execute(hc); err != nil {
			logger.Warn("hook.failed", "hook", hc.Type, "session_id", hc.SessionID, "error", err.Error())
		}
	}
}
