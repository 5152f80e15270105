// Package format implements the chained formatter pipeline: an ordered list of
// formatter configs is composed into a single handler which threads the
// document text through each external formatter in turn, and the final text is
// packaged into a replace edit for the editor layer.
package format

import (
	"context"

	"github.com/chainfmt/chainfmt/config"
	"github.com/chainfmt/chainfmt/editor"
	"github.com/chainfmt/chainfmt/stats"
	"github.com/charmbracelet/log"
)

// Whole runs the configured chain over the entire document.
// It returns nil if cancellation was observed or the chain produced no text;
// a nil result means "leave the document untouched" and is distinct from an
// edit with empty replacement text, which would delete content.
func Whole(
	ctx context.Context,
	stages []*config.Formatter,
	doc *editor.Document,
	statz *stats.Stats,
) []editor.TextEdit {
	return produce(ctx, stages, doc, statz, doc.Text(), doc.FullRange())
}

// InRange runs the configured chain over the text spanned by rng, producing an
// edit replacing exactly that range. Text outside the range is never touched.
func InRange(
	ctx context.Context,
	stages []*config.Formatter,
	doc *editor.Document,
	rng editor.Range,
	statz *stats.Stats,
) ([]editor.TextEdit, error) {
	input, err := doc.TextIn(rng)
	if err != nil {
		return nil, err
	}

	return produce(ctx, stages, doc, statz, input, rng), nil
}

func produce(
	ctx context.Context,
	stages []*config.Formatter,
	doc *editor.Document,
	statz *stats.Stats,
	input string,
	span editor.Range,
) []editor.TextEdit {
	output, ok := New(stages, doc, statz).Apply(ctx, input)

	if !ok {
		log.Debugf("formatting of %s was cancelled", doc.Path())

		return nil
	}

	if output == "" {
		return nil
	}

	statz.Add(stats.Formatted, 1)

	return []editor.TextEdit{{Range: span, NewText: output}}
}
