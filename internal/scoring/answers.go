package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Answers maps a 0-based question position to the selected option index.
//
// On the wire it is either an object keyed by position ({"0": 1, "2": 3}) or
// an array ([1, null, 3]). Object keys must be canonical decimal positions;
// aliases such as "00", " 0" or "+0" are ignored. Values may be numbers or
// numeric strings. Null, non-numeric and non-integral values are dropped,
// which scores the position as unanswered.
type Answers map[int]int

func (a *Answers) UnmarshalJSON(data []byte) error {
	out := Answers{}
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
	case len(data) > 0 && data[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("answers: %w", err)
		}
		for key, value := range raw {
			pos, ok := positionKey(key)
			if !ok {
				continue
			}
			if idx, ok := parseOptionIndex(value); ok {
				out[pos] = idx
			}
		}
	case len(data) > 0 && data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("answers: %w", err)
		}
		for pos, value := range raw {
			if idx, ok := parseOptionIndex(value); ok {
				out[pos] = idx
			}
		}
	default:
		return fmt.Errorf("answers: expected object or array")
	}

	*a = out
	return nil
}

// positionKey accepts only the canonical spelling of a non-negative position,
// so every position has at most one key.
func positionKey(key string) (int, bool) {
	pos, err := strconv.Atoi(key)
	if err != nil || pos < 0 || strconv.Itoa(pos) != key {
		return 0, false
	}
	return pos, true
}

func parseOptionIndex(raw json.RawMessage) (int, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return integral(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
