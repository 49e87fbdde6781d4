// Package draft reads and writes the JSON draft consumed by the dictation page.
package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-dictation/internal/segment"
)

// DefaultFileName is the draft name used when no output is given.
const DefaultFileName = "draft_config.json"

// Envelope is the top-level draft document.
type Envelope struct {
	Title         string           `json:"title"`
	AudioFile     string           `json:"audio_file"`
	TotalDuration segment.Seconds  `json:"total_duration"`
	Segments      []segment.Record `json:"segments"`
	Stats         *Stats           `json:"stats,omitempty"`
}

// Stats summarizes the segments of an envelope.
type Stats struct {
	TotalSegments      int             `json:"total_segments"`
	TotalDuration      segment.Seconds `json:"total_duration"`
	AvgSegmentDuration segment.Seconds `json:"avg_segment_duration"`
}

// Option configures New.
type Option func(*Envelope)

// WithStats attaches a stats block computed from the segments.
func WithStats() Option {
	return func(e *Envelope) {
		s := ComputeStats(e.Segments, e.TotalDuration)
		e.Stats = &s
	}
}

// New builds an envelope. totalDuration is rounded to one decimal and a nil
// segment list is stored as empty so it encodes as [].
func New(title, audioFile string, totalDuration float64, records []segment.Record, opts ...Option) *Envelope {
	if records == nil {
		records = []segment.Record{}
	}
	e := &Envelope{
		Title:         title,
		AudioFile:     audioFile,
		TotalDuration: segment.Seconds(segment.Round1(totalDuration)),
		Segments:      records,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeStats averages the rounded segment lengths. An empty list averages to 0.
func ComputeStats(records []segment.Record, total segment.Seconds) Stats {
	s := Stats{TotalSegments: len(records), TotalDuration: total}
	if len(records) == 0 {
		return s
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.End - r.Start)
	}
	s.AvgSegmentDuration = segment.Seconds(sum / float64(len(records)))
	return s
}

// Encode writes e as two-space indented JSON with a trailing newline.
// Non-ASCII and HTML characters are written literally.
func (e *Envelope) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return nil
}

// WriteFile writes e to path, replacing any existing file.
func WriteFile(path string, e *Envelope) error {
	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		return err
	}
	if err := WriteAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write draft %s: %w", path, err)
	}
	return nil
}

// WriteAtomic replaces path with data. Content goes to a temp file in the
// same directory first, so a failed run never leaves a truncated file.
func WriteAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := func() error {
		defer func() { _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return tmp.Sync()
	}()
	if writeErr == nil {
		// #nosec G302 -- output is read by the page build
		writeErr = os.Chmod(tmpPath, 0o644)
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpPath, path)
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}
	return nil
}

// Decode reads one envelope from r and checks segment bounds.
func Decode(r io.Reader) (*Envelope, error) {
	var e Envelope
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	for i, s := range e.Segments {
		if s.Start < 0 || s.End < s.Start {
			return nil, fmt.Errorf("%w: segment %d (id %d) has bounds %s-%s", ErrInvalidDraft, i+1, s.ID, s.Start, s.End)
		}
	}
	if e.Segments == nil {
		e.Segments = []segment.Record{}
	}
	return &e, nil
}

// Read loads a draft file.
func Read(path string) (*Envelope, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified draft file
	if err != nil {
		return nil, fmt.Errorf("open draft: %w", err)
	}
	defer func() { _ = f.Close() }()

	e, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}
