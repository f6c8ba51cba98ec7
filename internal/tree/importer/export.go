package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/critree/internal/tree"
)

// Export renders a structure in the given format. The output parses back
// into an equal structure.
func Export(s *tree.Structure, format Format) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("export structure: %w", err)
	}
	doc := fromNode(s.Goal)

	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(out, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("marshal YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal YAML: %w", err)
		}
		return buf.Bytes(), nil

	case FormatMarkdown:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", escapeLabel(s.Goal.Label))
		s.Walk(func(n *tree.Node, level int) {
			if level == 0 {
				return
			}
			fmt.Fprintf(&b, "%s- %s\n", strings.Repeat("  ", level-1), escapeLabel(n.Label))
		})
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`,
)

// escapeLabel backslash-escapes a label so markdown reads it back as
// plain text instead of emphasis, code, links or a nested block.
func escapeLabel(label string) string {
	out := inlineEscaper.Replace(label)
	switch {
	case strings.HasPrefix(out, "-"), strings.HasPrefix(out, "+"):
		return `\` + out
	}
	// "1. x" and "1) x" open an ordered list.
	digits := len(out) - len(strings.TrimLeft(out, "0123456789"))
	if digits > 0 && digits < len(out) && (out[digits] == '.' || out[digits] == ')') {
		return out[:digits] + `\` + out[digits:]
	}
	return out
}

// Save writes a structure to path in the format implied by its extension.
func Save(s *tree.Structure, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Export(s, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write structure: %w", err)
	}
	return nil
}
