package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
)

// Format selects a renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatSARIF)}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatSARIF:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected one of %s", s, strings.Join(Formats(), ", "))
	}
}

// Extension returns the file extension used when the output path is a folder.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	default:
		return "txt"
	}
}

// Options tune the text renderer.
type Options struct {
	MaxFindings int // 0 prints every finding
}

// Write renders a in the given format.
func Write(w io.Writer, format Format, a *orchestrator.Analysis, opts Options) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, a)
	case FormatSARIF:
		return WriteSARIF(w, a)
	default:
		return WriteText(w, a, opts)
	}
}

// WriteJSON writes the analysis as indented JSON.
func WriteJSON(w io.Writer, a *orchestrator.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}
