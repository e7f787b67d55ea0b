package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/artifact"
	"github.com/hupe1980/toolmesh/backend/codegen"
	"github.com/hupe1980/toolmesh/backend/convert"
	"github.com/hupe1980/toolmesh/backend/ocr"
	"github.com/hupe1980/toolmesh/conversation"
	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/history"
	"github.com/hupe1980/toolmesh/job"
	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/responder"
	"github.com/hupe1980/toolmesh/tool"
)

// ErrEngineClosed is returned by Handle and StartSession after Shutdown.
var ErrEngineClosed = errors.New("engine closed")

// DefaultGreeting is the assistant message opening every session.
const DefaultGreeting = "Hello! I can convert files, extract text from images and generate code. " +
	"Type /convert <file> <format>, /ocr <image> or /code <language> <prompt>, or just ask me anything."

// Config defines tuning parameters of the Engine.
//
// Example:
//
//	cfg := engine.DefaultConfig
//	cfg.MaxConcurrentJobs = 1
//	cfg.OCRTimeout = 30 * time.Second
type Config struct {
	// MaxConcurrentJobs bounds the number of Running jobs across all
	// sessions. Admitted jobs wait in StatusQueued. 0 means unlimited.
	MaxConcurrentJobs int

	// Per tool deadlines, measured from the moment a job enters Running.
	CodeTimeout    time.Duration
	ConvertTimeout time.Duration
	OCRTimeout     time.Duration

	// LogCapacity caps the number of messages per session; 0 is unbounded.
	LogCapacity int

	// Greeting is appended as first message of every session. Empty
	// disables it.
	Greeting string

	// TitleLength truncates the archived conversation title.
	TitleLength int
}

// DefaultConfig provides the default configuration values.
var DefaultConfig = Config{
	MaxConcurrentJobs: 4,
	CodeTimeout:       60 * time.Second,
	ConvertTimeout:    120 * time.Second,
	OCRTimeout:        90 * time.Second,
	Greeting:          DefaultGreeting,
	TitleLength:       48,
}

// Timeout returns the deadline configured for a tool.
func (c Config) Timeout(id core.ToolID) time.Duration {
	var d time.Duration
	switch id {
	case core.ToolCode:
		d = c.CodeTimeout
	case core.ToolConvert:
		d = c.ConvertTimeout
	case core.ToolOCR:
		d = c.OCRTimeout
	}
	if d <= 0 {
		d = time.Minute
	}
	return d
}

// Options configures an Engine. Every dependency has an in-process default.
type Options struct {
	Config Config

	// Registry is the tool catalogue. Defaults to tool.DefaultRegistry().
	Registry *tool.Registry

	// Jobs stores job records and tool slots.
	Jobs *job.Store

	// Artifacts receives the output of successful jobs.
	Artifacts core.ArtifactStore

	// History archives ended sessions.
	History core.HistoryStore

	// Responder answers input that targets no tool. Defaults to the canned
	// responder.
	Responder core.Responder

	// Tool backends.
	CodeGenerator core.CodeGenerator
	Converter     core.Converter
	Extractor     core.TextExtractor

	// Hooks observe appended messages and job transitions.
	Hooks *HookManager

	Logger logging.Logger

	// Clock is used for session timestamps.
	Clock func() time.Time
}

// Engine owns the sessions of the assistant and routes their input either to
// the default responder or to a tool job.
//
// Concurrency model:
//   - one mutex per session linearises all writes to its log, its job
//     statuses and its tool slots
//   - backends run on scheduler goroutines outside any session lock
//   - sessions are independent of each other
type Engine struct {
	registry  *tool.Registry
	jobs      *job.Store
	artifacts core.ArtifactStore
	history   core.HistoryStore
	responder core.Responder

	codegen   core.CodeGenerator
	converter core.Converter
	extractor core.TextExtractor

	hooks  *HookManager
	logger logging.Logger
	clock  func() time.Time
	config Config

	mu       sync.RWMutex
	sessions map[string]*session

	sched *scheduler
}

// New creates an Engine.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = tool.DefaultRegistry()
	}
	if opts.Jobs == nil {
		logger, clock := opts.Logger, opts.Clock
		opts.Jobs = job.NewStore(func(o *job.Options) {
			o.Logger = logger
			o.Clock = clock
		})
	}
	if opts.Artifacts == nil {
		opts.Artifacts = artifact.NewInMemoryStore()
	}
	if opts.History == nil {
		opts.History = history.NewInMemoryStore()
	}
	if opts.Responder == nil {
		opts.Responder = responder.NewCanned()
	}
	if opts.CodeGenerator == nil {
		opts.CodeGenerator = codegen.NewTemplate()
	}
	if opts.Converter == nil {
		opts.Converter = convert.NewLocal()
	}
	if opts.Extractor == nil {
		opts.Extractor = ocr.NewStatic()
	}
	if opts.Hooks == nil {
		opts.Hooks = NewHookManager()
	}

	e := &Engine{
		registry:  opts.Registry,
		jobs:      opts.Jobs,
		artifacts: opts.Artifacts,
		history:   opts.History,
		responder: opts.Responder,
		codegen:   opts.CodeGenerator,
		converter: opts.Converter,
		extractor: opts.Extractor,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		clock:     opts.Clock,
		config:    opts.Config,
		sessions:  make(map[string]*session),
	}
	e.sched = newScheduler(e, opts.Config.MaxConcurrentJobs)
	return e
}

// Registry returns the tool catalogue.
func (e *Engine) Registry() *tool.Registry { return e.registry }

// Hooks returns the hook manager.
func (e *Engine) Hooks() *HookManager { return e.hooks }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// StartSession creates a session with an empty log (or the greeting) and
// returns its id.
func (e *Engine) StartSession() (string, error) {
	if e.sched.isClosed() {
		return "", ErrEngineClosed
	}
	capacity, clock := e.config.LogCapacity, e.clock
	s := &session{
		id: core.NewID(),
		log: conversation.NewLog(func(o *conversation.Options) {
			o.Capacity = capacity
			o.Clock = clock
		}),
		model:     core.DefaultModel,
		startedAt: e.clock().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.mu.Lock()
	e.sessions[s.id] = s
	e.mu.Unlock()

	if e.config.Greeting != "" {
		if _, err := e.appendLocked(s, core.NewAssistantMessage(e.config.Greeting)); err != nil {
			return "", err
		}
	}
	e.logger.Info("session.started", "session_id", s.id)
	return s.id, nil
}

// EndSession closes a session: queued jobs are cancelled, running jobs are
// asked to stop, the conversation is archived in the history store and the
// session's artifacts are removed. The returned summary is what was archived.
func (e *Engine) EndSession(sessionID string) (core.Conversation, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return core.Conversation{}, err
	}

	s.mu.Lock()
	for _, j := range e.jobs.Pending(sessionID) {
		if err := e.cancelLocked(s, j.ID); err != nil {
			e.logger.Warn("session.cancel_job", "session_id", sessionID, "job_id", j.ID, "error", err.Error())
		}
	}
	s.closed = true
	summary := e.summarize(s)
	s.mu.Unlock()

	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	var errs []error
	if summary.MessageCount > 0 {
		if err := e.history.Archive(summary); err != nil {
			errs = append(errs, fmt.Errorf("archive conversation: %w", err))
		}
	}
	if ids, err := e.artifacts.List(sessionID); err == nil {
		for _, id := range ids {
			if err := e.artifacts.Delete(sessionID, id); err != nil && !errors.Is(err, artifact.ErrNotFound) {
				errs = append(errs, fmt.Errorf("delete artifact %s: %w", id, err))
			}
		}
	}

	e.logger.Info("session.ended", "session_id", sessionID, "messages", summary.MessageCount, "jobs", summary.JobCount)
	return summary, errors.Join(errs...)
}

func (e *Engine) summarize(s *session) core.Conversation {
	msgs := s.log.Snapshot()
	c := core.Conversation{
		SessionID:    s.id,
		Model:        s.model,
		MessageCount: len(msgs),
		JobCount:     len(e.jobs.List(s.id)),
		StartedAt:    s.startedAt,
		EndedAt:      e.clock().UTC(),
	}
	var transcript strings.Builder
	for _, m := range msgs {
		if c.Title == "" && m.Role == core.RoleUser {
			c.Title = truncate(m.Content, e.config.TitleLength)
		}
		transcript.WriteString(m.Content)
		transcript.WriteByte('\n')
	}
	if c.Title == "" {
		c.Title = "New conversation"
	}
	c.Transcript = transcript.String()
	return c
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

// SelectModel sets the responder model of a session.
func (e *Engine) SelectModel(sessionID, model string) error {
	if !core.ValidModel(model) {
		return fmt.Errorf("%w: %q (choose one of %s)", core.ErrUnknownModel, model, strings.Join(core.Models, ", "))
	}
	s, err := e.session(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %s", core.ErrSessionClosed, sessionID)
	}
	s.model = model
	return nil
}

// Model returns the responder model selected for a session.
func (e *Engine) Model(sessionID string) (string, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model, nil
}

// Snapshot returns an ordered copy of the session's log.
func (e *Engine) Snapshot(sessionID string) ([]core.Message, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.log.Snapshot(), nil
}

// Messages returns a lazy, restartable iteration over the session's log.
func (e *Engine) Messages(sessionID string) (iter.Seq[core.Message], error) {
	s, err := e.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.log.All(), nil
}

// GetJob returns a copy of a job.
func (e *Engine) GetJob(jobID string) (core.Job, error) {
	return e.jobs.Get(jobID)
}

// Jobs returns copies of a session's jobs in creation order.
func (e *Engine) Jobs(sessionID string) []core.Job {
	return e.jobs.List(sessionID)
}

// Artifact returns the bytes produced by a succeeded job of the session.
func (e *Engine) Artifact(sessionID, jobID string) ([]byte, error) {
	return e.artifacts.Get(sessionID, jobID)
}

// Wait blocks until no job is queued or running, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	return e.sched.waitIdle(ctx)
}

// Shutdown stops accepting input, cancels every queued and running job and
// waits for the scheduler goroutines to finish or ctx to be done.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.sched.shutdown()
	return e.sched.waitIdle(ctx)
}

func (e *Engine) session(id string) (*session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return s, nil
}

func (e *Engine) lookup(id string) *session {
	s, _ := e.session(id)
	return s
}
