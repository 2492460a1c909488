package question

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the immutable, ordered set of quiz categories.
type Catalog struct {
	categories []Category
	byID       map[string]int
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a YAML catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(file.Categories)
}

// NewCatalog validates categories and builds the id index.
func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	c := &Catalog{
		categories: make([]Category, len(categories)),
		byID:       make(map[string]int, len(categories)),
	}
	questionIDs := make(map[int]string)
	for i, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("category at position %d has no id", i)
		}
		if _, dup := c.byID[cat.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", cat.ID)
		}
		if len(cat.Questions) == 0 {
			return nil, fmt.Errorf("category %q has no questions", cat.ID)
		}
		for pos, q := range cat.Questions {
			if len(q.Options) != OptionCount {
				return nil, fmt.Errorf("category %q question %d: want %d options, got %d", cat.ID, pos, OptionCount, len(q.Options))
			}
			if _, ok := q.Option(q.Correct); !ok {
				return nil, fmt.Errorf("category %q question %d: correct index %d out of range", cat.ID, pos, q.Correct)
			}
			if owner, dup := questionIDs[q.ID]; dup {
				return nil, fmt.Errorf("question id %d used by both %q and %q", q.ID, owner, cat.ID)
			}
			questionIDs[q.ID] = cat.ID
		}
		c.byID[cat.ID] = i
		c.categories[i] = cat
	}
	return c, nil
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	return c.categories[idx], nil
}

// Has reports whether id names a category.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Categories returns every category in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ListCategories renders summaries in catalog order, attaching a high score
// only for categories present in highScores.
func (c *Catalog) ListCategories(highScores map[string]float64) []Summary {
	out := make([]Summary, 0, len(c.categories))
	for _, cat := range c.categories {
		s := Summary{
			Info:          cat.Info(),
			QuestionCount: len(cat.Questions),
		}
		if score, ok := highScores[cat.ID]; ok {
			s.HighScore = &score
		}
		out = append(out, s)
	}
	return out
}

// TotalQuestions counts questions across all categories.
func (c *Catalog) TotalQuestions() int {
	total := 0
	for _, cat := range c.categories {
		total += len(cat.Questions)
	}
	return total
}
