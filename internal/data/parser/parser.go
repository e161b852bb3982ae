package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/event"
	"github.com/penwyp/go-kadlog/internal/core/timeline"
	"github.com/penwyp/go-kadlog/internal/util"
)

// MaxLineSize is the longest line classified; longer lines are ignored.
const MaxLineSize = 10 * 1024 * 1024

// ErrLineTooLong is the reason recorded for lines over the size limit.
var ErrLineTooLong = errors.New("line too long")

// ignoredTextWidth bounds the text kept for a line over the size limit.
const ignoredTextWidth = 120

// Parser reads a lookup log and reconstructs its timeline.
type Parser struct {
	classifier  *event.Classifier
	maxLineSize int
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		classifier:  event.NewClassifier(),
		maxLineSize: MaxLineSize,
	}
}

// ParseFile parses the log file at the specified path.
func (p *Parser) ParseFile(path string) (*timeline.Timeline, error) {
	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open file: %s - %v", path, err))
		return nil, err
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse consumes r to the end and returns the resulting timeline. Lines that
// produce no event, including lines over the size limit, are recorded on the
// timeline and never stop the pass; only read errors are returned.
func (p *Parser) Parse(r io.Reader) (*timeline.Timeline, error) {
	start := time.Now()
	tl := timeline.New()
	reader := bufio.NewReaderSize(r, 64*1024)

	lineCount := 0
	events := 0
	for {
		raw, truncated, err := p.readLine(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			util.LogDebug(fmt.Sprintf("Error reading input at line %d - %v", lineCount+1, err))
			return nil, fmt.Errorf("failed to read line %d: %w", lineCount+1, err)
		}
		lineCount++
		line := strings.TrimSpace(string(raw))

		// lines without a timestamp refer to the moment of the previous one
		if ts, ok := p.classifier.Timestamp(line); ok {
			tl.Observe(ts)
		}

		if truncated {
			reason := fmt.Errorf("%w: over %d bytes", ErrLineTooLong, p.maxLineSize)
			util.WithFields(util.Field{Key: "line", Value: lineCount}).Warn(reason.Error())
			tl.Skip(lineCount, util.TruncateToWidth(line, ignoredTextWidth), reason)
			continue
		}

		ev, err := p.classifier.Classify(line)
		if err != nil {
			util.WithFields(util.Field{Key: "line", Value: lineCount}).Debug("Skip line", util.Field{Key: "reason", Value: err.Error()})
			tl.Skip(lineCount, line, err)
			continue
		}
		tl.Apply(ev)
		events++
	}

	util.LogDebug(fmt.Sprintf("Parsing finished: duration %v, %d lines, %d events, %s",
		time.Since(start), lineCount, events, tl.Summary()))

	return tl, nil
}

// readLine returns the next line without its terminator. A line longer than
// maxLineSize is consumed to its end, but only its first maxLineSize bytes
// are returned, with the second result true.
func (p *Parser) readLine(r *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	truncated, read := false, false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && read {
				return line, truncated, nil
			}
			return nil, false, err
		}
		read = true

		if !truncated {
			if room := p.maxLineSize - len(line); len(chunk) > room {
				line = append(line, chunk[:room]...)
				truncated = true
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, truncated, nil
		}
	}
}
