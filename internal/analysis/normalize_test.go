package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/types"
)

func TestNormalize(t *testing.T) {
	data := &types.StructuredData{
		PersonalInfo: types.PersonalInfo{FullName: "  Jane  ", Email: " jane@example.com\n"},
		Summary:      "  Engineer ",
		Experience: []types.Experience{{
			Company:    " Acme ",
			EndDate:    "present",
			Highlights: []string{" Led team ", "", "   "},
		}},
		Education: []types.Education{{Institution: " MIT "}},
		Skills:    []string{"Go", "GO", " go ", "Straße", "STRASSE", "Rust"},
		Projects: []types.Project{{
			Name:         " cli ",
			Technologies: []string{"Go", "go"},
		}},
		Languages: []string{"English", "ENGLISH", "German"},
	}

	Normalize(data)

	assert.Equal(t, "Jane", data.PersonalInfo.FullName)
	assert.Equal(t, "jane@example.com", data.PersonalInfo.Email)
	assert.Equal(t, "Engineer", data.Summary)
	assert.Equal(t, "Acme", data.Experience[0].Company)
	assert.True(t, data.Experience[0].IsCurrent)
	assert.Equal(t, []string{"Led team"}, data.Experience[0].Highlights)
	assert.Equal(t, "MIT", data.Education[0].Institution)
	assert.Equal(t, []string{"Go", "Straße", "Rust"}, data.Skills)
	assert.Equal(t, "cli", data.Projects[0].Name)
	assert.Equal(t, []string{"Go"}, data.Projects[0].Technologies)
	assert.Equal(t, []string{"English", "German"}, data.Languages)
}

func TestNormalize_NilSlices(t *testing.T) {
	data := &types.StructuredData{}
	Normalize(data)

	assert.NotNil(t, data.Experience)
	assert.NotNil(t, data.Education)
	assert.NotNil(t, data.Skills)
	assert.Nil(t, data.Languages)
}

func TestNormalize_Nil(t *testing.T) {
	assert.NotPanics(t, func() { Normalize(nil) })
}
