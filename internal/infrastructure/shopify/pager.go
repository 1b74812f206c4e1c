package shopify

import (
	"context"
	"io"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// MaxPageSize is the largest page Shopify's REST API returns
const MaxPageSize = 250

type listFunc[S any] func(ctx context.Context, options interface{}) ([]S, *goshopify.Pagination, error)

// cursorPager follows Shopify's page_info cursor lazily. Each Next call
// issues at most one request. The pager can be resumed by calling Next again
// after a transient error.
type cursorPager[S, T any] struct {
	shop     string
	resource string
	first    interface{}
	next     *goshopify.ListOptions
	list     func() (listFunc[S], error)
	convert  func(S) T
	limiter  *RateLimiter
	maxPages int
	pages    int
	done     bool
}

func (p *cursorPager[S, T]) Next(ctx context.Context) ([]T, error) {
	if p.done || (p.maxPages > 0 && p.pages >= p.maxPages) {
		return nil, io.EOF
	}

	list, err := p.list()
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx, p.shop); err != nil {
		return nil, err
	}

	var options interface{} = p.first
	if p.pages > 0 {
		options = p.next
	}

	records, pagination, err := list(ctx, options)
	if err != nil {
		return nil, classifyError("list "+p.resource, err)
	}
	p.pages++

	if pagination == nil || pagination.NextPageOptions == nil {
		p.done = true
	} else {
		p.next = pagination.NextPageOptions
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, p.convert(r))
	}
	return out, nil
}

func clampPageSize(n int) int {
	if n <= 0 || n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
