package testutil

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/toolmesh/core"
)

// Gate is a controllable backend. Every call signals Started and blocks
// until Release is called or the context is done.
type Gate struct {
	started  chan struct{}
	release  chan struct{}
	released atomic.Bool
	calls    atomic.Int32
	// IgnoreCancel makes calls keep blocking after the context is done,
	// until Release.
	IgnoreCancel bool
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{started: make(chan struct{}, 64), release: make(chan struct{})}
}

// Started receives one value per backend call.
func (g *Gate) Started() <-chan struct{} { return g.started }

// Release unblocks current and future calls.
func (g *Gate) Release() {
	if g.released.CompareAndSwap(false, true) {
		close(g.release)
	}
}

// Calls reports how often the backend was invoked.
func (g *Gate) Calls() int { return int(g.calls.Load()) }

func (g *Gate) wait(ctx context.Context) error {
	g.calls.Add(1)
	g.started <- struct{}{}
	if g.IgnoreCancel {
		<-g.release
		return nil
	}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CodeGenerator returns a generator producing source once released.
func (g *Gate) CodeGenerator(source string) core.CodeGenerator {
	return core.CodeGeneratorFunc(func(ctx context.Context, _, _ string) (core.GeneratedCode, error) {
		if err := g.wait(ctx); err != nil {
			return core.GeneratedCode{}, err
		}
		return core.GeneratedCode{Source: source}, nil
	})
}

// Converter returns a converter echoing its input once released.
func (g *Gate) Converter() core.Converter {
	return core.ConverterFunc(func(ctx context.Context, data []byte, _, _ string) ([]byte, error) {
		if err := g.wait(ctx); err != nil {
			return nil, err
		}
		return append([]byte(nil), data...), nil
	})
}

// Extractor returns an extractor producing text once released.
func (g *Gate) Extractor(text string) core.TextExtractor {
	return core.TextExtractorFunc(func(ctx context.Context, _ []byte) (core.Extraction, error) {
		if err := g.wait(ctx); err != nil {
			return core.Extraction{}, err
		}
		return core.Extraction{Text: text, Confidence: 0.9}, nil
	})
}

// ErrBackend is the failure returned by the failing fakes.
var ErrBackend = errors.New("backend unavailable")

// FailingExtractor always fails with an extraction error.
func FailingExtractor() core.TextExtractor {
	return core.TextExtractorFunc(func(context.Context, []byte) (core.Extraction, error) {
		return core.Extraction{}, core.ExtractionError(ErrBackend)
	})
}

// FailingGenerator always fails with a plain error.
func FailingGenerator() core.CodeGenerator {
	return core.CodeGeneratorFunc(func(context.Context, string, string) (core.GeneratedCode, error) {
		return core.GeneratedCode{}, ErrBackend
	})
}

// StaticResponder always answers reply.
func StaticResponder(reply string) core.Responder {
	return core.ResponderFunc(func(context.Context, core.ConversationContext) (string, error) {
		return reply, nil
	})
}
