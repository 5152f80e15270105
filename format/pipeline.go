package format

import (
	"context"

	"github.com/chainfmt/chainfmt/config"
	"github.com/chainfmt/chainfmt/editor"
	"github.com/chainfmt/chainfmt/stats"
)

// Handler transforms the current pipeline text into the next.
// ok is false once cancellation has been observed, in which case text is
// meaningless and the whole pipeline resolves to "no result".
type Handler func(ctx context.Context, text string) (output string, ok bool)

// identity terminates the chain.
func identity(_ context.Context, text string) (string, bool) {
	return text, true
}

// Pipeline is the composed chain of stage handlers for one document.
// Stages run strictly in sequence; the only shared state between them is the
// text value being threaded through.
type Pipeline struct {
	handler Handler
}

// New composes the configured stages into a single handler.
// The stage list is folded from the right: the last declared stage delegates
// to the identity handler, and each earlier stage closes over the handler for
// everything after it, so the first declared stage runs first.
func New(stages []*config.Formatter, doc *editor.Document, statz *stats.Stats) *Pipeline {
	next := Handler(identity)

	for i := len(stages) - 1; i >= 0; i-- {
		next = newStage(stages[i], doc, statz).handler(next)
	}

	return &Pipeline{handler: next}
}

// Apply runs the chain on input.
// ok is false if the context was cancelled before every stage could run.
func (p *Pipeline) Apply(ctx context.Context, input string) (string, bool) {
	return p.handler(ctx, input)
}

// handler wraps the stage into a Handler delegating to next.
// Errors are contained at the stage boundary: a failing stage logs and hands
// its untouched input to the rest of the chain.
func (s *stage) handler(next Handler) Handler {
	return func(ctx context.Context, text string) (string, bool) {
		// no stage begins once cancellation has been observed
		if ctx.Err() != nil {
			s.log.Debug("cancellation observed, aborting pipeline")

			return "", false
		}

		s.statz.Add(stats.Considered, 1)

		output, err := s.run(text)
		if err != nil {
			s.statz.Add(stats.Failed, 1)
			s.log.Errorf("stage failed: %v", err)

			return next(ctx, text)
		}

		return next(ctx, output)
	}
}
