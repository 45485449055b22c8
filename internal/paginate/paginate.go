// Package paginate fetches page-numbered collections in parallel batches.
package paginate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pages describes how a collection is paged.
type Pages struct {
	// PageSize is the number of items a full page holds.
	PageSize int
	// BatchWidth is the number of pages requested concurrently.
	BatchWidth int
	// FirstPage is the number of the first page. Zero means 1.
	FirstPage int
	// MaxPages stops fetching after this many pages. Zero means no limit.
	MaxPages int
}

// FetchFunc returns the items of one page.
type FetchFunc[T any] func(ctx context.Context, page int) ([]T, error)

// FetchAll requests BatchWidth pages at a time and concatenates them in
// page order. It stops after the first batch holding fewer than
// PageSize*BatchWidth items. The first failing page cancels its batch and
// its error is returned; items already collected are discarded.
func FetchAll[T any](ctx context.Context, p Pages, fetch FetchFunc[T]) ([]T, error) {
	if p.PageSize <= 0 || p.BatchWidth <= 0 {
		return nil, fmt.Errorf("paginate: page size and batch width must be positive, got %d and %d", p.PageSize, p.BatchWidth)
	}
	page := p.FirstPage
	if page == 0 {
		page = 1
	}
	capacity := p.PageSize * p.BatchWidth

	var all []T
	fetched := 0
	for {
		width := p.BatchWidth
		if p.MaxPages > 0 && fetched+width > p.MaxPages {
			width = p.MaxPages - fetched
		}
		if width <= 0 {
			return all, nil
		}

		batch, err := fetchBatch(ctx, page, width, fetch)
		if err != nil {
			return nil, err
		}

		n := 0
		for _, items := range batch {
			n += len(items)
			all = append(all, items...)
		}
		fetched += width
		page += width

		if n < capacity {
			return all, nil
		}
	}
}

func fetchBatch[T any](ctx context.Context, first, width int, fetch FetchFunc[T]) ([][]T, error) {
	results := make([][]T, width)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < width; i++ {
		g.Go(func() error {
			items, err := fetch(gctx, first+i)
			if err != nil {
				return fmt.Errorf("page %d: %w", first+i, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
