package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/tree"
)

func TestBuildStructure(t *testing.T) {
	st, err := buildStructure("Adopt an AI system", []string{
		"Efficiency=Speed, Accuracy",
		"Cost",
		"Risk=,Privacy,",
	})
	require.NoError(t, err)

	require.Len(t, st.Criteria(), 3)
	assert.Equal(t, []string{"Speed", "Accuracy"}, st.SubCriteria(0))
	assert.Empty(t, st.SubCriteria(1))
	assert.Equal(t, []string{"Privacy"}, st.SubCriteria(2))
}

func TestBuildStructure_Errors(t *testing.T) {
	_, err := buildStructure("", nil)
	assert.ErrorIs(t, err, tree.ErrEmptyGoal)

	_, err = buildStructure("G", []string{"=A1"})
	assert.ErrorContains(t, err, "missing criterion name")

	_, err = buildStructure("G", []string{"A", "B", "C", "D"})
	assert.ErrorIs(t, err, tree.ErrCapacity)

	st, err := buildStructure("G", []string{"A", "B", "C", "D"}, tree.Unbounded())
	require.NoError(t, err)
	assert.Len(t, st.Criteria(), 4)
}

func TestBuildStructure_DuplicateCriteria(t *testing.T) {
	st, err := buildStructure("Buy a car", []string{"Cost=A", "Cost=B"})
	require.NoError(t, err)

	require.Len(t, st.Criteria(), 2)
	assert.Equal(t, "Cost", st.Criteria()[0].Label)
	assert.Equal(t, "Cost", st.Criteria()[1].Label)
	assert.Equal(t, [][]string{{"A"}, {"B"}},
		[][]string{st.SubCriteria(0), st.SubCriteria(1)})
}

func TestReadKey(t *testing.T) {
	key, err := readKey(strings.NewReader("\n  sk-test  \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	_, err = readKey(strings.NewReader("\n\n"))
	assert.Error(t, err)
}

func TestTallyLine(t *testing.T) {
	results := []diagnosis.Result{
		{Grade: diagnosis.GradeGood},
		{Grade: diagnosis.GradeDanger},
		{Grade: diagnosis.GradeGood},
		{Grade: diagnosis.GradeError},
	}
	plain := func(_ diagnosis.Grade, s string) string { return s }
	assert.Equal(t, "1 danger · 2 good · 1 error", tallyLine(results, plain))
	assert.Equal(t, "no nodes diagnosed", tallyLine(nil, plain))
}

func TestGradeSummary(t *testing.T) {
	assert.Equal(t, "1 danger · 3 good", gradeSummary(map[string]int{"good": 3, "danger": 1}))
	assert.Equal(t, "no nodes diagnosed", gradeSummary(nil))
}

func TestNewTable_RendersRows(t *testing.T) {
	var buf bytes.Buffer
	tbl := newTable(&buf, "Run", "Goal")
	tbl.Append([]string{"r-1", "Pick a laptop"})
	tbl.Render()

	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "Pick a laptop")
}

func TestJSONResult(t *testing.T) {
	r := jsonResult(diagnosis.Result{
		Node:  "Cost",
		Grade: diagnosis.GradeError,
		Err:   &diagnosis.CollaboratorError{Node: "Cost", Err: errors.New("boom")},
	})
	assert.Equal(t, "error", r.Grade)
	assert.Contains(t, r.Error, "boom")
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("broken pipe")
}

func TestJSONSink_KeepsFirstError(t *testing.T) {
	w := &failingWriter{}
	sink := &jsonSink{enc: json.NewEncoder(w)}
	sink.emit(diagnosis.Result{Node: "G", Grade: diagnosis.GradeGood})
	sink.emit(diagnosis.Result{Node: "A", Grade: diagnosis.GradeGood})

	assert.EqualError(t, sink.err, "broken pipe")
	assert.Equal(t, 1, w.writes)
}

func TestDiagnoseCommand_MockProvider(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRITREE_LOG", filepath.Join(dir, "critree.log"))
	t.Setenv("CRITREE_LLM_PROVIDER", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"diagnose",
		"--db", filepath.Join(dir, "critree.db"),
		"--config", filepath.Join(dir, "config.toml"),
		"--provider", "mock",
		"--goal", "Adopt an AI system",
		"--criterion", "Efficiency=Speed,Accuracy",
		"--criterion", "Cost",
		"--json",
	})
	require.NoError(t, rootCmd.Execute())

	dec := json.NewDecoder(&out)
	var got []resultJSON
	for dec.More() {
		var r resultJSON
		require.NoError(t, dec.Decode(&r))
		got = append(got, r)
	}

	// goal, then Efficiency; Cost has no children and is not a target
	require.Len(t, got, 2)
	assert.Equal(t, "Adopt an AI system", got[0].Node)
	assert.Equal(t, []string{"Efficiency", "Cost"}, got[0].Children)
	assert.Equal(t, "Efficiency", got[1].Node)
	for _, r := range got {
		assert.Equal(t, "good", r.Grade)
	}
}
