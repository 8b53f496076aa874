package http

import "context"

// PageFetcher is a function that fetches a page of items. It receives the
// cursor returned by the previous page (empty for the first page) and
// returns the items, the cursor for the next page, whether more pages
// remain, and any error.
type PageFetcher[T any] func(ctx context.Context, cursor string) (items []T, nextCursor string, hasNext bool, err error)

// PageIterator provides iteration over cursor-paginated API results.
// It lazily fetches pages as needed.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	cursor  string
	buffer  []T
	done    bool
	err     error
	fetched int // Total items fetched so far
}

// NewPageIterator creates a new iterator with the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch}
}

// Next returns the next item from the iterator.
// Returns the item, true if an item was returned, and any error.
// When iteration is complete, returns (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	// Return any previous error
	if p.err != nil {
		return zero, false, p.err
	}

	// Fetch pages until the buffer has items. A page can legitimately be
	// empty while more pages remain; iteration only ends on the terminal
	// page.
	for len(p.buffer) == 0 {
		if p.done {
			return zero, false, nil
		}

		items, next, hasNext, err := p.fetch(ctx, p.cursor)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.cursor = next
		p.done = !hasNext || next == ""
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects all items from the iterator into a slice.
// This fetches every page and holds every item in memory; avoid it
// for unbounded result sets.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		all = append(all, item)
	}
	return all, nil
}

// Err returns any error that occurred during iteration.
func (p *PageIterator[T]) Err() error {
	return p.err
}

// Cursor returns the cursor the next fetch will use. It can be persisted
// to resume iteration later.
func (p *PageIterator[T]) Cursor() string {
	return p.cursor
}

// Fetched returns the number of items fetched so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
}

// Reset resets the iterator to the beginning.
// Any buffered items are discarded.
func (p *PageIterator[T]) Reset() {
	p.cursor = ""
	p.buffer = nil
	p.done = false
	p.err = nil
	p.fetched = 0
}

// Take returns up to n items from the iterator.
func (p *PageIterator[T]) Take(ctx context.Context, n int) ([]T, error) {
	var items []T
	for len(items) < n {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// Skip advances the iterator by n items.
func (p *PageIterator[T]) Skip(ctx context.Context, n int) error {
	for range n {
		_, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

// ForEach calls fn for each item in the iterator.
// If fn returns an error, iteration stops and that error is returned.
func (p *PageIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}
