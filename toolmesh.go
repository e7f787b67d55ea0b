// Package toolmesh provides a high-level facade over the session engine, its
// tool backends and stores. Most applications interact with this package by:
//  1. Creating a ToolMesh via New() (optionally overriding the in-memory stores,
//     the default responder or the tool backends)
//  2. Starting a session and sending user input with Send or SendFile
//  3. Observing the conversation through OnMessage, or waiting for a single
//     job with Run and Await
//
// The facade delegates orchestration to engine.Engine. All defaults are safe
// for local development and testing.
package toolmesh

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/engine"
	"github.com/hupe1980/toolmesh/logging"
)

// Version of the toolmesh module.
const Version = "0.1.0"

// ErrNoJob is returned by Run when the input did not start a job.
var ErrNoJob = errors.New("input did not start a job")

// Options configures the ToolMesh instance.
type Options struct {
	// Engine configuration (concurrency, deadlines, greeting)
	EngineConfig engine.Config

	// Stores (default to in-memory implementations if nil)
	Artifacts core.ArtifactStore
	History   core.HistoryStore

	// Responder answers input that targets no tool (defaults to the canned
	// responder if nil)
	Responder core.Responder

	// Tool backends (default to the local implementations if nil)
	CodeGenerator core.CodeGenerator
	Converter     core.Converter
	Extractor     core.TextExtractor

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ToolMesh is the high-level facade aggregating the engine and its services.
type ToolMesh struct {
	opts   Options
	engine *engine.Engine

	mu       sync.Mutex
	watchers map[string][]chan core.Job
}

// New creates a new ToolMesh instance with optional overrides.
func New(optFns ...func(o *Options)) *ToolMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	hooks := engine.NewHookManager()
	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Artifacts = opts.Artifacts
		o.History = opts.History
		o.Responder = opts.Responder
		o.CodeGenerator = opts.CodeGenerator
		o.Converter = opts.Converter
		o.Extractor = opts.Extractor
		o.Hooks = hooks
		o.Logger = opts.Logger
	})

	m := &ToolMesh{opts: opts, engine: e, watchers: make(map[string][]chan core.Job)}
	hooks.Register(engine.NewFunctionHook(engine.HookJobFinished, func(hc engine.HookContext) error {
		m.notify(*hc.Job)
		return nil
	}))
	return m
}

// Engine exposes the underlying engine.
func (m *ToolMesh) Engine() *engine.Engine { return m.engine }

// OnMessage registers fn for every message appended to any session log.
// It runs while the session is locked and must not call back into the
// session.
func (m *ToolMesh) OnMessage(fn func(sessionID string, msg core.Message)) {
	m.engine.Hooks().Register(engine.OnMessage(fn))
}

// StartSession opens a new conversation.
func (m *ToolMesh) StartSession() (string, error) { return m.engine.StartSession() }

// EndSession closes a conversation and archives it.
func (m *ToolMesh) EndSession(sessionID string) (core.Conversation, error) {
	return m.engine.EndSession(sessionID)
}

// Send handles a text message.
func (m *ToolMesh) Send(ctx context.Context, sessionID, text string) (engine.Outcome, error) {
	return m.engine.Handle(ctx, sessionID, core.Input{Text: text})
}

// SendFile handles a text message with an attachment.
func (m *ToolMesh) SendFile(ctx context.Context, sessionID, text string, file core.File) (engine.Outcome, error) {
	return m.engine.Handle(ctx, sessionID, core.Input{Text: text, File: &file})
}

// Run handles input that must start a job and waits until the job is
// finished.
func (m *ToolMesh) Run(ctx context.Context, sessionID string, in core.Input) (core.Job, error) {
	out, err := m.engine.Handle(ctx, sessionID, in)
	if err != nil {
		return core.Job{}, err
	}
	if out.Route != engine.RouteTool || out.Job == nil {
		return core.Job{}, ErrNoJob
	}
	return m.Await(ctx, out.Job.ID)
}

// Await blocks until the job reaches a terminal status or ctx is done.
func (m *ToolMesh) Await(ctx context.Context, jobID string) (core.Job, error) {
	ch := m.watch(jobID)
	defer m.unwatch(jobID, ch)

	j, err := m.engine.GetJob(jobID)
	if err != nil {
		return core.Job{}, err
	}
	if j.Status.IsTerminal() {
		return j, nil
	}

	select {
	case j := <-ch:
		return j, nil
	case <-ctx.Done():
		return j, ctx.Err()
	}
}

// Close cancels all jobs and waits for the scheduler to drain.
func (m *ToolMesh) Close(ctx context.Context) error { return m.engine.Shutdown(ctx) }

func (m *ToolMesh) watch(jobID string) chan core.Job {
	ch := make(chan core.Job, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers[jobID] = append(m.watchers[jobID], ch)
	return ch
}

func (m *ToolMesh) unwatch(jobID string, ch chan core.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chans := m.watchers[jobID]
	for i, c := range chans {
		if c == ch {
			chans = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(chans) == 0 {
		delete(m.watchers, jobID)
		return
	}
	m.watchers[jobID] = chans
}

func (m *ToolMesh) notify(j core.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.watchers[j.ID] {
		select {
		case ch <- j:
		default:
		}
	}
}
