// Package errors provides structured diagnostics for gpir's external-facing
// surfaces: the textual-form lexer/parser (internal/syntax) and the CLI
// (cmd/gpir-opt). The IR verifier's own typed errors live in internal/ir —
// they never carry source positions, since gpir tracks no source spans
// (spec Non-goal); this package is strictly for things produced while
// reading or rendering text.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Position locates a diagnostic within source text.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// CompilerError represents a structured error with suggestions and context.
type CompilerError struct {
	Level       ErrorLevel
	Code        string // e.g. E0101
	Message     string
	Position    Position
	Length      int // length of the problematic region
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

func (e CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s[%s]: %s (%s:%d:%d)", e.Level, e.Code, e.Message, e.Position.Filename, e.Position.Line, e.Position.Column)
	}
	return fmt.Sprintf("%s: %s (%s:%d:%d)", e.Level, e.Message, e.Position.Filename, e.Position.Line, e.Position.Column)
}

// Suggestion represents a suggested fix.
type Suggestion struct {
	Message     string
	Replacement string
	Position    Position
	Length      int
}

// Reporter handles consistent error formatting and suggestions.
type Reporter struct {
	filename string
	source   string
	lines    []string
}

// NewReporter creates a new diagnostic reporter for a file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders a CompilerError with Rust-like styling and suggestions.
func (r *Reporter) Format(err CompilerError) string {
	var out strings.Builder

	levelColor := r.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(err.Level)), err.Message))
	}

	width := r.lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)

	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line > 1 && err.Position.Line-1 < len(r.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, err.Position.Line-1)), dim("│"), r.lines[err.Position.Line-2]))
	}

	if err.Position.Line <= len(r.lines) && err.Position.Line > 0 {
		line := r.lines[err.Position.Line-1]
		out.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), line))
		out.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), r.marker(err.Position.Column, err.Length, err.Level)))
	}

	if err.Position.Line < len(r.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, err.Position.Line+1)), dim("│"), r.lines[err.Position.Line]))
	}

	if len(err.Suggestions) > 0 {
		out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		suggestionColor := color.New(color.FgCyan).SprintFunc()
		for i, s := range err.Suggestions {
			if i == 0 {
				out.WriteString(fmt.Sprintf("%s %s %s: %s\n", indent, suggestionColor("help"), suggestionColor("try"), s.Message))
			} else {
				out.WriteString(fmt.Sprintf("%s %s %s\n", indent, suggestionColor("    "), s.Message))
			}
			if s.Replacement != "" {
				out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
				replacement := strings.ReplaceAll(s.Replacement, "\n", fmt.Sprintf("\n%s %s ", indent, dim("│")))
				out.WriteString(fmt.Sprintf("%s %s %s\n", indent, suggestionColor("│"), suggestionColor(replacement)))
			}
		}
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		out.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note))
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		out.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), helpColor("help:"), err.HelpText))
	}

	out.WriteString("\n")
	return out.String()
}

func (r *Reporter) levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max(0, column-1))

	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
