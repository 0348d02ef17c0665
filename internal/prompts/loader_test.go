package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AnalyzePrompts(t *testing.T) {
	set, err := Load("analyze.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"analyze-system", "analyze-user"}, set.Keys())

	system, err := set.Get("analyze-system")
	require.NoError(t, err)
	assert.Contains(t, system, "expert HR and Resume Writer")
	assert.Contains(t, system, `"personalInfo"`)
	assert.Contains(t, system, "MM/YYYY")
}

func TestLoad_Memoized(t *testing.T) {
	first, err := Load("analyze.json")
	require.NoError(t, err)
	second, err := Load("analyze.json")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("nonexistent.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	assert.Panics(t, func() { MustLoad("nonexistent.json") })
}

func TestSet_UnknownKey(t *testing.T) {
	_, err := MustLoad("analyze.json").Get("nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in analyze.json")
}

func TestSet_Render(t *testing.T) {
	out, err := MustLoad("analyze.json").Render("analyze-user", map[string]string{"ResumeText": "Jane Doe, Go developer"})
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe, Go developer")
	assert.NotContains(t, out, "{{.ResumeText}}")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "x and {{.B}}", Format("{{.A}} and {{.B}}", map[string]string{"A": "x"}))
	assert.Equal(t, "{{.A}}", Format("{{.A}}", nil))
	// values are not re-expanded
	assert.Equal(t, "{{.B}} y", Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "y"}))
}
