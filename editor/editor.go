// Package editor contains the protocol types exchanged with the editor
// integration layer: positions, ranges, text edits and an immutable snapshot of
// the document being formatted.
package editor

import (
	"fmt"
	"strings"
)

// Position addresses a point in a document. Line and Column are zero-based,
// with Column measured in bytes from the start of the line.
type Position struct {
	Line   int
	Column int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// TextEdit replaces the text within Range with NewText.
// An empty NewText deletes the spanned text; callers signalling "leave the
// document untouched" must return no edit at all rather than an empty one.
type TextEdit struct {
	Range   Range
	NewText string
}

// Document is an immutable snapshot of the file being formatted.
// Path is the absolute path of the backing file on disk, which may be ahead of
// or behind this snapshot if a formatter mutates it in place.
type Document struct {
	path  string
	text  string
	lines []string
}

func NewDocument(path string, text string) *Document {
	return &Document{
		path:  path,
		text:  text,
		lines: strings.Split(text, "\n"),
	}
}

// Path returns the absolute path of the backing file.
func (d *Document) Path() string {
	return d.path
}

// Text returns the full text of the snapshot.
func (d *Document) Text() string {
	return d.text
}

// LineCount returns the number of lines in the snapshot.
// A trailing newline counts as starting a final empty line, matching how
// editors address the position after the last line.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// FullRange returns the span replaced when formatting the whole document: from
// the document start to one line past the last line.
func (d *Document) FullRange() Range {
	return Range{
		Start: Position{Line: 0, Column: 0},
		End:   Position{Line: len(d.lines), Column: 0},
	}
}

// TextIn returns the text spanned by r.
func (d *Document) TextIn(r Range) (string, error) {
	start, err := d.offset(r.Start)
	if err != nil {
		return "", fmt.Errorf("invalid range start: %w", err)
	}

	end, err := d.offset(r.End)
	if err != nil {
		return "", fmt.Errorf("invalid range end: %w", err)
	}

	if start > end {
		return "", fmt.Errorf("range start %v is after range end %v", r.Start, r.End)
	}

	return d.text[start:end], nil
}

// offset converts a position into a byte offset within the snapshot text.
// The position one line past the last line maps to the end of the text.
func (d *Document) offset(p Position) (int, error) {
	if p.Line < 0 || p.Column < 0 {
		return 0, fmt.Errorf("negative position %v", p)
	}

	if p.Line >= len(d.lines) {
		if p.Line == len(d.lines) && p.Column == 0 {
			return len(d.text), nil
		}

		return 0, fmt.Errorf("line %d is out of range", p.Line)
	}

	offset := 0
	for i := 0; i < p.Line; i++ {
		offset += len(d.lines[i]) + 1 // +1 for the newline
	}

	if p.Column > len(d.lines[p.Line]) {
		return 0, fmt.Errorf("column %d is out of range on line %d", p.Column, p.Line)
	}

	return offset + p.Column, nil
}
