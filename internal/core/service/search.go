package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/egis-bridge/internal/core/domain"
)

func (s Service) Search(
	ctx context.Context, f domain.SearchFilter, startRow int,
) (domain.SearchResult, error) {
	const op = "Service.Search"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.catalog.Search(ctx, f, startRow)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res.Records, err = s.Annotate(ctx, res.Records)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("search completed", "nRecords", len(res.Records), "total", res.Total)
	return res, nil
}

// Annotate returns a copy of rs with ExistsLocally set for every record
// whose manufacturer product number is already known to the store.
func (s Service) Annotate(
	ctx context.Context, rs []domain.ProductRecord,
) ([]domain.ProductRecord, error) {
	const op = "Service.Annotate"

	out := make([]domain.ProductRecord, len(rs))
	for i, r := range rs {
		if r.ManufacturerProductNumber != "" {
			_, found, err := s.findItem(ctx, r.ManufacturerProductNumber)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			r.ExistsLocally = found
		}
		out[i] = r
	}
	return out, nil
}
