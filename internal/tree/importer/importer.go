// Package importer loads criteria trees from structured documents.
//
// JSON and YAML documents share one shape, validated against a JSON Schema
// before conversion:
//
//	{"name": "Goal", "sub_criteria": [{"name": "Cost", "sub_criteria": [...]}]}
//
// Markdown documents use the first level-1 heading as the goal and nested
// bullet lists as criteria at any depth.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/critree/internal/tree"
)

// Format is a structure document format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrInvalidInput reports a malformed structure document.
type ErrInvalidInput struct {
	Source string
	Line   int // 0 when unknown
	Err    error
}

func (e *ErrInvalidInput) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid structure %s (line %d): %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("invalid structure %s: %v", e.Source, e.Err)
}

func (e *ErrInvalidInput) Unwrap() error { return e.Err }

// document is the on-disk node shape shared by JSON and YAML.
type document struct {
	Name        string     `json:"name" yaml:"name"`
	SubCriteria []document `json:"sub_criteria,omitempty" yaml:"sub_criteria,omitempty"`
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported structure file %q (want .json, .yaml, .yml or .md)", path)
}

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown structure format %q", s)
}

// Load reads and parses a structure document from disk.
func Load(path string) (*tree.Structure, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &ErrInvalidInput{Source: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure: %w", err)
	}
	return Parse(path, data, format)
}

// Parse converts a document into a structure. Malformed input is reported
// as *ErrInvalidInput.
func Parse(source string, data []byte, format Format) (*tree.Structure, error) {
	var (
		s   *tree.Structure
		err error
	)
	switch format {
	case FormatJSON:
		s, err = parseJSON(source, data)
	case FormatYAML:
		s, err = parseYAML(source, data)
	case FormatMarkdown:
		s, err = parseMarkdown(source, data)
	default:
		return nil, &ErrInvalidInput{Source: source, Err: fmt.Errorf("unknown format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: err}
	}
	return s, nil
}

func parseJSON(source string, data []byte) (*tree.Structure, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ErrInvalidInput{Source: source, Line: jsonErrorLine(data, err), Err: err}
	}
	if err := validateDocument(raw); err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: err}
	}
	return &tree.Structure{Goal: toNode(doc)}, nil
}

// toNode converts a document, dropping blank-named descendants.
func toNode(doc document) *tree.Node {
	n := &tree.Node{Label: strings.TrimSpace(doc.Name)}
	for _, sub := range doc.SubCriteria {
		if strings.TrimSpace(sub.Name) == "" {
			continue
		}
		n.Children = append(n.Children, toNode(sub))
	}
	return n
}

func fromNode(n *tree.Node) document {
	doc := document{Name: n.Label}
	for _, c := range n.Children {
		doc.SubCriteria = append(doc.SubCriteria, fromNode(c))
	}
	return doc
}

func jsonErrorLine(data []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return strings.Count(string(data[:offset]), "\n") + 1
}
