package question

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Generator produces a single question for a category display name.
type Generator interface {
	Generate(ctx context.Context, categoryName string) (Question, error)
}

// Generated is a produced question tagged with the category it was drawn for.
type Generated struct {
	Question
	Category string `json:"category"`
}

// BatchOptions tunes GenerateBatch.
type BatchOptions struct {
	Size        int
	Concurrency int
	// Pick chooses a category index in [0, n); defaults to math/rand.
	Pick func(n int) int
}

// BatchResult reports how many generations were attempted versus kept.
type BatchResult struct {
	Questions []Generated
	Attempted int
}

// GenerateBatch draws Size random categories and asks gen for one question
// each. Failed generations are dropped; the batch itself never fails unless
// ctx is cancelled before any work starts.
func GenerateBatch(ctx context.Context, gen Generator, catalog *Catalog, opts BatchOptions, logger zerolog.Logger) (BatchResult, error) {
	size := opts.Size
	if size <= 0 {
		size = 25
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}
	pick := opts.Pick
	if pick == nil {
		pick = rand.Intn
	}

	categories := catalog.Categories()
	picks := make([]Category, size)
	for i := range picks {
		picks[i] = categories[pick(len(categories))]
	}

	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	slots := make([]*Generated, size)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cat := range picks {
		i, cat := i, cat
		g.Go(func() error {
			q, err := gen.Generate(gctx, cat.Name)
			if err != nil {
				logger.Warn().Err(err).Str("category", cat.ID).Msg("question generation failed")
				return nil
			}
			slots[i] = &Generated{Question: q, Category: cat.ID}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Generated, 0, size)
	for _, s := range slots {
		if s == nil {
			continue
		}
		s.ID = len(out) + 1
		out = append(out, *s)
	}
	return BatchResult{Questions: out, Attempted: size}, nil
}
