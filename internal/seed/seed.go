package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/apparelstore/internal/domain"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// ProductCreator stores a new product.
type ProductCreator interface {
	Create(ctx context.Context, p *domain.Product) error
}

// Result summarizes a seeding run.
type Result struct {
	Created int
	Skipped int
}

// Load inserts products one by one. Products whose slug already exists are
// skipped, so re-running with the same seed is a no-op.
func Load(ctx context.Context, repo ProductCreator, products []domain.Product, logger *slog.Logger) (Result, error) {
	var res Result
	for i := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := repo.Create(ctx, &products[i])
		switch {
		case errors.Is(err, apperrors.ErrAlreadyExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed product %q: %w", products[i].Slug, err)
		default:
			res.Created++
		}

		if n := i + 1; n%500 == 0 {
			logger.InfoContext(ctx, "seeding",
				slog.Int("done", n),
				slog.Int("total", len(products)),
			)
		}
	}
	return res, nil
}
