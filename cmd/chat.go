package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toolmesh"
	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/engine"
)

const chatHelp = `Commands:
  /code [language] <prompt>   generate code
  /convert <file> <format>    convert a local file
  /ocr <image>                extract text from a local image
  /cancel <tool>              cancel the running job of a tool
  /jobs                       list the jobs of this conversation
  /wait                       wait until no job is running
  /save <job-id|tool> [path]  write a job result to disk
  /model [name]               show or select the responder model
  /help                       show this help
  /quit                       end the conversation
`

func newChatCmd(app *app) *cobra.Command {
	var (
		modelName string
		drainWait time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			mesh, err := wireMesh(cmd.Context(), cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mesh.Close(ctx)
			}()

			if modelName == "" {
				modelName = cfg.ResponderModel
			}
			s := &chatSession{mesh: mesh, out: &syncWriter{w: cmd.OutOrStdout()}, drainWait: drainWait}
			mesh.OnMessage(s.print)
			return s.run(cmd.Context(), cmd.InOrStdin(), modelName)
		},
	}
	cmd.Flags().StringVar(&modelName, "model", "", "responder model ("+strings.Join(core.Models, ", ")+")")
	cmd.Flags().DurationVar(&drainWait, "drain-wait", time.Minute, "how long to wait for running jobs when input ends")

	return cmd
}

type chatSession struct {
	mesh      *toolmesh.ToolMesh
	out       *syncWriter
	id        string
	drainWait time.Duration
}

func (s *chatSession) run(ctx context.Context, in io.Reader, modelName string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := s.mesh.StartSession()
	if err != nil {
		return err
	}
	s.id = id
	if err := s.mesh.Engine().SelectModel(id, modelName); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	quit := false
	for !quit && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err = s.handle(ctx, line)
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// input ended without /quit: let running jobs report before archiving
	if !quit {
		wctx, cancel := context.WithTimeout(ctx, s.drainWait)
		_ = s.mesh.Engine().Wait(wctx)
		cancel()
	}

	summary, err := s.mesh.EndSession(id)
	if err != nil {
		return err
	}
	s.out.Printf("Conversation %q saved (%d messages, %d jobs).\n", summary.Title, summary.MessageCount, summary.JobCount)
	return nil
}

// handle processes one input line and reports whether the user asked to quit.
// Errors that were already shown as a notice in the conversation are not
// returned.
func (s *chatSession) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		s.out.Printf("%s", chatHelp)
		return false, nil
	case "/jobs":
		s.listJobs()
		return false, nil
	case "/wait":
		wctx, cancel := context.WithTimeout(ctx, s.drainWait)
		defer cancel()
		if err := s.mesh.Engine().Wait(wctx); err != nil {
			s.out.Printf("error> %v\n", err)
		}
		return false, nil
	case "/model":
		s.model(fields[1:])
		return false, nil
	case "/save":
		s.save(fields[1:])
		return false, nil
	}

	input := core.Input{Text: line}
	if cmd, ok := engine.ParseCommand(line); ok && !cmd.Cancel && cmd.FileName != "" {
		f, err := readAttachment(cmd.FileName)
		if err != nil {
			s.out.Printf("error> %v\n", err)
			return false, nil
		}
		input.File = f
	}

	_, err := s.mesh.Engine().Handle(ctx, s.id, input)
	if errors.Is(err, core.ErrSessionClosed) || errors.Is(err, engine.ErrEngineClosed) {
		return false, err
	}
	return false, nil
}

func (s *chatSession) listJobs() {
	jobs := s.mesh.Engine().Jobs(s.id)
	if len(jobs) == 0 {
		s.out.Printf("no jobs\n")
		return
	}
	for _, j := range jobs {
		s.out.Printf("%s\t%s\t%s\n", j.ID, j.ToolID, j.Status)
	}
}

func (s *chatSession) model(args []string) {
	e := s.mesh.Engine()
	if len(args) == 0 {
		m, _ := e.Model(s.id)
		s.out.Printf("model: %s (available: %s)\n", m, strings.Join(core.Models, ", "))
		return
	}
	if err := e.SelectModel(s.id, strings.ToLower(args[0])); err != nil {
		s.out.Printf("error> %v\n", err)
		return
	}
	s.out.Printf("model set to %s\n", strings.ToLower(args[0]))
}

func (s *chatSession) save(args []string) {
	if len(args) == 0 {
		s.out.Printf("error> usage: /save <job-id|tool> [path]\n")
		return
	}
	e := s.mesh.Engine()
	j, ok := s.resultJob(args[0])
	if !ok {
		s.out.Printf("error> no result for %s\n", args[0])
		return
	}
	data, err := e.Artifact(s.id, j.ID)
	if err != nil {
		s.out.Printf("error> %v\n", err)
		return
	}
	path := j.Result.Name
	if len(args) > 1 {
		path = args[1]
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.out.Printf("error> %v\n", err)
		return
	}
	s.out.Printf("saved %s (%d bytes)\n", path, len(data))
}

// resultJob resolves a job id, or a tool id naming its latest successful job.
func (s *chatSession) resultJob(ref string) (core.Job, bool) {
	jobs := s.mesh.Engine().Jobs(s.id)
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		if j.Result == nil || j.Status != core.StatusSucceeded {
			continue
		}
		if j.ID == ref || string(j.ToolID) == strings.ToLower(ref) {
			return j, true
		}
	}
	return core.Job{}, false
}

// print renders appended messages. User messages are not echoed.
func (s *chatSession) print(_ string, msg core.Message) {
	var prefix string
	switch {
	case msg.Role == core.RoleUser:
		return
	case msg.IsError:
		prefix = "error"
	case msg.Role == core.RoleToolResult:
		prefix = "tool"
	default:
		prefix = "assistant"
	}
	if msg.RelatedJobID != "" {
		prefix += " [" + msg.RelatedJobID + "]"
	}
	s.out.Printf("%s> %s\n", prefix, msg.Content)
}

func readAttachment(path string) (*core.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return &core.File{
		Name:     filepath.Base(path),
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
		Data:     data,
	}, nil
}

// syncWriter serialises output from the input loop and the scheduler
// goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.w, format, args...)
}
