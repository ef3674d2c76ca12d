package searchindex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/godocsearch/internal/fingerprint"
)

// ErrMalformedArtifact is returned when a search index cannot be loaded
var ErrMalformedArtifact = errors.New("malformed search index")

// Format selects how an artifact is written to disk
type Format string

const (
	// FormatJSON writes the bare JSON document
	FormatJSON Format = "json"

	// FormatScript wraps the JSON in a variable assignment so it can be
	// loaded with a plain <script> tag
	FormatScript Format = "js"
)

const (
	scriptPrefix = "var search_data = "
	scriptSuffix = ";\n"
)

// FormatForPath picks the format from the file extension, defaulting to script
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatScript
}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatScript, "script", "javascript":
		return FormatScript, nil
	default:
		return "", fmt.Errorf("unknown index format %q", s)
	}
}

// Artifact is the immutable search index shared by every query engine
type Artifact struct {
	Ngrams  map[string]int `json:"ngrams"`
	Weights []int          `json:"weights"`
	Entries []IndexEntry   `json:"entries"`
}

// IndexEntry is the per-entry record of the artifact. On the wire it is a
// positional array; trailing empty optional fields are omitted.
type IndexEntry struct {
	Fingerprint        fingerprint.Fingerprint
	TiebreakerBonus    float64
	Path               string
	OwnerName          string
	MemberLabel        string
	DescriptionSnippet string
}

// MarshalJSON encodes the record as
// [fingerprint, bonus, path, owner, label|null, snippet].
func (e IndexEntry) MarshalJSON() ([]byte, error) {
	fp := e.Fingerprint
	if fp == nil {
		fp = fingerprint.Fingerprint{}
	}

	record := []any{fp, e.TiebreakerBonus, e.Path, e.OwnerName}
	switch {
	case e.DescriptionSnippet != "":
		var label any
		if e.MemberLabel != "" {
			label = e.MemberLabel
		}
		record = append(record, label, e.DescriptionSnippet)
	case e.MemberLabel != "":
		record = append(record, e.MemberLabel)
	}
	return json.Marshal(record)
}

// UnmarshalJSON decodes a positional record produced by MarshalJSON
func (e *IndexEntry) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: entry is not an array: %v", ErrMalformedArtifact, err)
	}
	if len(fields) < 4 || len(fields) > 6 {
		return fmt.Errorf("%w: entry has %d fields, want 4 to 6", ErrMalformedArtifact, len(fields))
	}

	var decoded IndexEntry
	targets := []any{&decoded.Fingerprint, &decoded.TiebreakerBonus, &decoded.Path, &decoded.OwnerName}
	names := []string{"fingerprint", "bonus", "path", "owner"}
	for i, target := range targets {
		if string(fields[i]) == "null" {
			return fmt.Errorf("%w: entry %s is null", ErrMalformedArtifact, names[i])
		}
		if err := json.Unmarshal(fields[i], target); err != nil {
			return fmt.Errorf("%w: entry %s: %v", ErrMalformedArtifact, names[i], err)
		}
	}

	if len(fields) > 4 {
		var label *string
		if err := json.Unmarshal(fields[4], &label); err != nil {
			return fmt.Errorf("%w: entry label: %v", ErrMalformedArtifact, err)
		}
		if label != nil {
			decoded.MemberLabel = *label
		}
	}
	if len(fields) > 5 {
		if err := json.Unmarshal(fields[5], &decoded.DescriptionSnippet); err != nil {
			return fmt.Errorf("%w: entry snippet: %v", ErrMalformedArtifact, err)
		}
	}

	*e = decoded
	return nil
}

// Validate checks the structural invariants the query engine relies on
func (a *Artifact) Validate() error {
	if a.Ngrams == nil || a.Weights == nil || a.Entries == nil {
		return fmt.Errorf("%w: missing ngrams, weights or entries", ErrMalformedArtifact)
	}

	// Positions must be a bijection onto 0..len(weights)-1
	owner := make([]string, len(a.Weights))
	used := make([]bool, len(a.Weights))
	for ngram, pos := range a.Ngrams {
		if pos < 0 || pos >= len(a.Weights) {
			return fmt.Errorf("%w: n-gram %q has position %d outside %d weights",
				ErrMalformedArtifact, ngram, pos, len(a.Weights))
		}
		if used[pos] {
			return fmt.Errorf("%w: n-grams %q and %q share position %d",
				ErrMalformedArtifact, owner[pos], ngram, pos)
		}
		used[pos] = true
		owner[pos] = ngram
	}
	for pos, ok := range used {
		if !ok {
			return fmt.Errorf("%w: no n-gram maps to position %d", ErrMalformedArtifact, pos)
		}
		if a.Weights[pos] <= 0 {
			return fmt.Errorf("%w: weight at position %d is %d", ErrMalformedArtifact, pos, a.Weights[pos])
		}
	}

	for i, entry := range a.Entries {
		if err := entry.Fingerprint.Validate(); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrMalformedArtifact, i, err)
		}
		if top := entry.Fingerprint.MaxPosition(); top >= len(a.Weights) {
			return fmt.Errorf("%w: entry %d sets bit %d beyond %d weights", ErrMalformedArtifact, i, top, len(a.Weights))
		}
		if !(entry.TiebreakerBonus > 0 && entry.TiebreakerBonus < 1) {
			return fmt.Errorf("%w: entry %d bonus %v outside (0,1)", ErrMalformedArtifact, i, entry.TiebreakerBonus)
		}
		if entry.Path == "" {
			return fmt.Errorf("%w: entry %d has no path", ErrMalformedArtifact, i)
		}
	}

	return nil
}

// Encode renders the artifact in the given format. Output is byte-identical
// for identical artifacts.
func (a *Artifact) Encode(w io.Writer, format Format) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode search index: %w", err)
	}

	if format == FormatScript {
		data = append(append([]byte(scriptPrefix), data...), scriptSuffix...)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write search index: %w", err)
	}
	return nil
}

// WriteFile atomically replaces path with the encoded artifact and returns
// the number of bytes written.
func (a *Artifact) WriteFile(path string, format Format) (int64, error) {
	var buf bytes.Buffer
	if err := a.Encode(&buf, format); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".search_index-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move search index into place: %w", err)
	}

	return int64(buf.Len()), nil
}

// Decode parses an artifact in either format and validates it
func Decode(data []byte) (*Artifact, error) {
	data = bytes.TrimSpace(data)
	if rest, ok := bytes.CutPrefix(data, []byte(scriptPrefix)); ok {
		data = bytes.TrimSuffix(bytes.TrimSpace(rest), []byte(";"))
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		if errors.Is(err, ErrMalformedArtifact) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Load reads and validates an artifact file
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search index: %w", err)
	}

	a, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return a, nil
}

// Stats summarizes an artifact for status output
type Stats struct {
	Entries         int
	Ngrams          int
	FingerprintSize int // Total fingerprint bytes across entries
	LongestPrint    int
}

// Stats computes size statistics
func (a *Artifact) Stats() Stats {
	s := Stats{Entries: len(a.Entries), Ngrams: len(a.Weights)}
	for _, e := range a.Entries {
		s.FingerprintSize += len(e.Fingerprint)
		if len(e.Fingerprint) > s.LongestPrint {
			s.LongestPrint = len(e.Fingerprint)
		}
	}
	return s
}
