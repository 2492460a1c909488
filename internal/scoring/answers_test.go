package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswersUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Answers
	}{
		{"string keys", `{"0": 0, "1": 2, "2": 1}`, Answers{0: 0, 1: 2, 2: 1}},
		{"sparse", `{"2": 3}`, Answers{2: 3}},
		{"array", `[1, null, 3]`, Answers{0: 1, 2: 3}},
		{"numeric strings", `{"0": "2", "1": " 1 "}`, Answers{0: 2, 1: 1}},
		{"integral float", `{"0": 2.0}`, Answers{0: 2}},
		{"junk values dropped", `{"0": "b", "1": 1.5, "2": true, "3": {}}`, Answers{}},
		{"junk keys dropped", `{"first": 1, "-1": 2}`, Answers{}},
		{"aliased keys ignored", `{"0": 0, "00": 1, " 0": 2, "+0": 3, "1 ": 2}`, Answers{0: 0}},
		{"null", `null`, Answers{}},
		{"out of range kept for grading", `{"0": 9}`, Answers{0: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Answers
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnswersUnmarshalRejectsScalars(t *testing.T) {
	var got Answers
	assert.Error(t, json.Unmarshal([]byte(`"0:1"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
}

func TestSubmissionWithoutAnswers(t *testing.T) {
	var sub Submission
	require.NoError(t, json.Unmarshal([]byte(`{"category": "math", "timeElapsed": 12}`), &sub))
	assert.Equal(t, "math", sub.Category)
	assert.Empty(t, sub.Answers)
	assert.Equal(t, 12.0, sub.TimeElapsed)
}

func TestAnswersUnmarshalAliasesAreStable(t *testing.T) {
	in := []byte(`{"00": 1, " 0": 2, "+0": 3, "0": 0}`)
	for i := 0; i < 200; i++ {
		var got Answers
		require.NoError(t, json.Unmarshal(in, &got))
		require.Equal(t, Answers{0: 0}, got)
	}
}
