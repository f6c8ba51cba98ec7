package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/critree/internal/tree"
)

const sampleJSON = `{
  "name": "Adopt an AI system",
  "sub_criteria": [
    {"name": "Efficiency", "sub_criteria": [
      {"name": "Speed"},
      {"name": "Accuracy", "sub_criteria": [{"name": "Precision"}, {"name": "Recall"}]}
    ]},
    {"name": "Cost", "sub_criteria": []},
    {"name": "  "}
  ]
}`

const sampleYAML = `name: Adopt an AI system
sub_criteria:
  - name: Efficiency
    sub_criteria:
      - name: Speed
      - name: Accuracy
        sub_criteria:
          - name: Precision
          - name: Recall
  - name: Cost
`

const sampleMarkdown = `# Adopt an AI system

Some notes that are ignored.

- Efficiency
  - Speed
  - Accuracy
    - Precision
    - Recall
- Cost
`

func wantSample() *tree.Structure {
	return &tree.Structure{Goal: tree.NewNode("Adopt an AI system",
		tree.NewNode("Efficiency",
			tree.NewNode("Speed"),
			tree.NewNode("Accuracy", tree.NewNode("Precision"), tree.NewNode("Recall")),
		),
		tree.NewNode("Cost"),
	)}
}

// outline compares structures without caring about nil vs empty slices.
func outline(s *tree.Structure) string {
	var b strings.Builder
	s.Walk(func(n *tree.Node, level int) {
		b.WriteString(strings.Repeat(".", level) + n.Label + "\n")
	})
	return b.String()
}

func TestParse_AllFormats(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", sampleJSON, FormatJSON},
		{"yaml", sampleYAML, FormatYAML},
		{"markdown", sampleMarkdown, FormatMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name, []byte(tt.data), tt.format)
			require.NoError(t, err)
			if diff := cmp.Diff(outline(wantSample()), outline(got)); diff != "" {
				t.Errorf("structure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		format   Format
		wantLine int
	}{
		{"json syntax", "{\n  \"name\": \"G\",\n  \"sub_criteria\": [\n}", FormatJSON, 4},
		{"json missing name", `{"sub_criteria": []}`, FormatJSON, 0},
		{"json wrong type", `{"name": 42}`, FormatJSON, 0},
		{"json children not array", `{"name": "G", "sub_criteria": {"name": "x"}}`, FormatJSON, 0},
		{"json blank goal", `{"name": "  "}`, FormatJSON, 0},
		{"yaml syntax", "name: G\nsub_criteria:\n  - name: [unclosed\n", FormatYAML, 0},
		{"yaml empty", "", FormatYAML, 0},
		{"yaml nested missing name", "name: G\nsub_criteria:\n  - title: x\n", FormatYAML, 0},
		{"markdown no heading", "- A\n- B\n", FormatMarkdown, 1},
		{"markdown only text", "just words\n", FormatMarkdown, 0},
		{"markdown item without label", "# G\n\n- 1. Unit Price\n  - a\n", FormatMarkdown, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("doc", []byte(tt.data), tt.format)
			require.Error(t, err)

			var inv *ErrInvalidInput
			require.True(t, errors.As(err, &inv), "expected *ErrInvalidInput, got %T", err)
			assert.Equal(t, "doc", inv.Source)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, inv.Line)
			}
		})
	}
}

func TestParse_UnboundedDepthAndWidth(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"name": "root", "sub_criteria": [`)
	for i := 0; i < 12; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"name": "c", "sub_criteria": [{"name": "d", "sub_criteria": [{"name": "e"}]}]}`)
	}
	b.WriteString(`]}`)

	s, err := Parse("wide", []byte(b.String()), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, s.Criteria(), 12)
	assert.Equal(t, 4, s.Depth())
	// goal + 12 criteria + 12 "d" nodes
	assert.Len(t, s.Targets(), 25)
}

// markupLabels has labels that read as markdown syntax when written raw.
func markupLabels() *tree.Structure {
	return &tree.Structure{Goal: tree.NewNode("Pick *one* vendor",
		tree.NewNode("1. Unit Price", tree.NewNode("a"), tree.NewNode("b")),
		tree.NewNode("Cost_total_"),
		tree.NewNode("- dash", tree.NewNode("`code` and [link](x)")),
		tree.NewNode("# not a heading", tree.NewNode("2) second"), tree.NewNode(`back\slash <b>`)),
	)}
}

func TestExport_RoundTrip(t *testing.T) {
	samples := map[string]func() *tree.Structure{
		"sample": wantSample,
		"markup": markupLabels,
	}
	for _, format := range []Format{FormatJSON, FormatYAML, FormatMarkdown} {
		for name, build := range samples {
			t.Run(string(format)+"/"+name, func(t *testing.T) {
				data, err := Export(build(), format)
				require.NoError(t, err)

				got, err := Parse("export", data, format)
				require.NoError(t, err)
				assert.Equal(t, outline(build()), outline(got))
			})
		}
	}
}

func TestExport_RejectsEmptyGoal(t *testing.T) {
	_, err := Export(&tree.Structure{Goal: tree.NewNode("")}, FormatJSON)
	require.ErrorIs(t, err, tree.ErrEmptyGoal)
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")

	require.NoError(t, Save(wantSample(), path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, outline(wantSample()), outline(got))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	var inv *ErrInvalidInput
	require.ErrorAs(t, err, &inv)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}
