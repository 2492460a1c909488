package question

import "errors"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// ErrCategoryNotFound is returned for category ids absent from the catalog.
var ErrCategoryNotFound = errors.New("category not found")

// Question is a single multiple-choice item. Correct indexes into Options.
type Question struct {
	ID          int      `json:"id" yaml:"id"`
	Question    string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	Correct     int      `json:"correct" yaml:"correct"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

// Option returns the option text at idx and whether idx is in range.
func (q Question) Option(idx int) (string, bool) {
	if idx < 0 || idx >= len(q.Options) {
		return "", false
	}
	return q.Options[idx], true
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	opt, _ := q.Option(q.Correct)
	return opt
}

// Category groups questions with display metadata. Question order is the
// positional key used when answers are scored.
type Category struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Icon        string     `json:"icon" yaml:"icon"`
	Color       string     `json:"color" yaml:"color"`
	Questions   []Question `json:"-" yaml:"questions"`
}

// Info is the category metadata without its questions.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Summary is a category listing row.
type Summary struct {
	Info
	QuestionCount int      `json:"questionCount"`
	HighScore     *float64 `json:"highScore,omitempty"`
}

// Info strips the question list.
func (c Category) Info() Info {
	return Info{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
	}
}
