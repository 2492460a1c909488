package question

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogInvariants(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	ids := []string{}
	for _, summary := range catalog.ListCategories(nil) {
		ids = append(ids, summary.ID)
		cat, err := catalog.Category(summary.ID)
		require.NoError(t, err)
		assert.Equal(t, len(cat.Questions), summary.QuestionCount)
		assert.Nil(t, summary.HighScore)
		for _, q := range cat.Questions {
			assert.Len(t, q.Options, OptionCount, "question %d", q.ID)
		}
	}
	assert.Equal(t, []string{"general", "science", "math", "history"}, ids)
	assert.Equal(t, 12, catalog.TotalQuestions())
}

func TestCatalogMathCategory(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	math, err := catalog.Category("math")
	require.NoError(t, err)
	require.Len(t, math.Questions, 3)
	assert.Equal(t, []int{0, 2, 0}, []int{math.Questions[0].Correct, math.Questions[1].Correct, math.Questions[2].Correct})
	assert.Equal(t, "120", math.Questions[0].CorrectOption())
}

func TestCatalogUnknownCategory(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = catalog.Category("foo")
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
	assert.False(t, catalog.Has("foo"))
}

func TestListCategoriesAttachesKnownHighScores(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	summaries := catalog.ListCategories(map[string]float64{"science": 66.5, "unknown": 10})
	for _, s := range summaries {
		if s.ID == "science" {
			require.NotNil(t, s.HighScore)
			assert.Equal(t, 66.5, *s.HighScore)
			continue
		}
		assert.Nil(t, s.HighScore, s.ID)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	valid := Question{ID: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, Correct: 3}

	tests := []struct {
		name       string
		categories []Category
		wantErr    string
	}{
		{"empty", nil, "no categories"},
		{"no questions", []Category{{ID: "a"}}, "has no questions"},
		{"three options", []Category{{ID: "a", Questions: []Question{{ID: 1, Options: []string{"a", "b", "c"}}}}}, "want 4 options"},
		{"correct out of range", []Category{{ID: "a", Questions: []Question{{ID: 1, Options: []string{"a", "b", "c", "d"}, Correct: 4}}}}, "out of range"},
		{"duplicate category", []Category{{ID: "a", Questions: []Question{valid}}, {ID: "a", Questions: []Question{valid}}}, "duplicate category"},
		{"duplicate question id", []Category{{ID: "a", Questions: []Question{valid}}, {ID: "b", Questions: []Question{valid}}}, "question id 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.categories)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - id: go
    name: Go
    description: Gophers only
    icon: Γ
    color: "#00add8"
    questions:
      - id: 100
        question: Which keyword starts a goroutine?
        options: [go, async, spawn, thread]
        correct: 0
        explanation: The go statement starts a goroutine.
`), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	cat, err := catalog.Category("go")
	require.NoError(t, err)
	assert.Equal(t, "go", cat.Questions[0].CorrectOption())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
