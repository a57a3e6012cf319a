package client

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/google/go-cmp/cmp"
)

// List runs the list operation called plural (e.g. "projects") and collects
// the results. See gitlab3.ListOptions for how Limit, Page and PerPage
// select the requests.
func (r *Resource) List(ctx context.Context, plural string, opts *gitlab3.ListOptions) ([]*Resource, error) {
	var out []*Resource

	for item, err := range r.All(ctx, plural, opts) {
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// All is the lazy form of List. Pages are fetched in order as the sequence
// is consumed; stopping early stops fetching. Every call starts over.
func (r *Resource) All(ctx context.Context, plural string, opts *gitlab3.ListOptions) iter.Seq2[*Resource, error] {
	return func(yield func(*Resource, error) bool) {
		typ, err := r.target(plural, OperationList)
		if err != nil {
			yield(nil, err)

			return
		}

		if opts == nil {
			opts = &gitlab3.ListOptions{}
		}

		lister := &lister{owner: r, typ: typ, filters: opts.Filters}

		lister.path, err = resolveURL(typ.unqualifiedURL, r)
		if err != nil {
			yield(nil, err)

			return
		}

		switch {
		case opts.Limit > 0:
			lister.limited(ctx, opts.Limit, yield)
		case opts.Page > 0 || opts.PerPage > 0:
			lister.single(ctx, opts.Page, opts.PerPage, yield)
		default:
			lister.unbounded(ctx, r.conn.pagination, yield)
		}
	}
}

// target resolves an operation name of r's type to the type it serves.
func (r *Resource) target(name string, kind OperationKind) (*ResourceType, error) {
	op, ok := r.typ.operations[name]
	if !ok || op.Kind != kind {
		return nil, gitlab3.WrapError(gitlab3.KindInvalidArgument, gitlab3.ErrUnknownOperation, "%s has no %s operation %q", r.typ.Name(), kind, name)
	}

	return op.Target, nil
}

type lister struct {
	owner   *Resource
	typ     *ResourceType
	path    string
	filters gitlab3.Params
}

// page fetches one page. Page and perPage are left out of the query unless
// positive; forcePage sends page even when it is 0.
func (l *lister) page(ctx context.Context, page, perPage int, forcePage bool) ([]any, error) {
	query, err := encodeQuery(l.filters)
	if err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}

	if page > 0 || forcePage {
		query.Set("page", strconv.Itoa(page))
	}

	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	payload, err := l.owner.conn.request(ctx, http.MethodGet, l.path, query, nil)
	if err != nil {
		return nil, err
	}

	switch items := payload.(type) {
	case nil:
		return nil, nil
	case []any:
		return items, nil
	default:
		return nil, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrUnexpectedPayload, "listing %s returned %T", l.path, payload)
	}
}

// emit wraps and yields items. It reports false once the consumer stopped
// or an item could not be wrapped.
func (l *lister) emit(items []any, yield func(*Resource, error) bool) bool {
	for _, item := range items {
		fields, ok := item.(*gitlab3.Fields)
		if !ok {
			yield(nil, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrUnexpectedPayload, "%s item is %T", l.typ.Name(), item))

			return false
		}

		if !yield(l.owner.conn.newResource(l.typ, l.owner, fields), nil) {
			return false
		}
	}

	return true
}

func (l *lister) single(ctx context.Context, page, perPage int, yield func(*Resource, error) bool) {
	items, err := l.page(ctx, page, perPage, false)
	if err != nil {
		yield(nil, err)

		return
	}

	l.emit(items, yield)
}

// limited serves a limit up to MaxPerPage with one request of that size and
// larger limits with pages 1..n of MaxPerPage, truncating the last one.
func (l *lister) limited(ctx context.Context, limit int, yield func(*Resource, error) bool) {
	if limit <= gitlab3.MaxPerPage {
		l.single(ctx, 0, limit, yield)

		return
	}

	pages := (limit + gitlab3.MaxPerPage - 1) / gitlab3.MaxPerPage
	remaining := limit

	for page := 1; page <= pages; page++ {
		items, err := l.page(ctx, page, gitlab3.MaxPerPage, false)
		if err != nil {
			yield(nil, err)

			return
		}

		if len(items) > remaining {
			items = items[:remaining]
		}

		remaining -= len(items)

		if !l.emit(items, yield) {
			return
		}
	}
}

// unbounded walks the whole collection. It stops on an empty page or, with
// repeat detection, on a page equal to the previous one. GitLab serves page
// 1 for page 0, so when both are equal page 1 is skipped once and the walk
// goes on with page 2.
func (l *lister) unbounded(ctx context.Context, cfg gitlab3.PaginationConfig, yield func(*Resource, error) bool) {
	logger := l.owner.conn.logger
	page := cfg.StartPage
	skippedAlias := false

	var last []any

	for {
		items, err := l.page(ctx, page, gitlab3.MaxPerPage, page == 0)
		if err != nil {
			yield(nil, err)

			return
		}

		if len(items) == 0 {
			logger.Debug("pagination stopped on empty page", map[string]interface{}{"path": l.path, "page": page})

			return
		}

		if cfg.DetectRepeats && last != nil && cmp.Equal(items, last) {
			if cfg.PageZeroAlias && cfg.StartPage == 0 && page == 1 && !skippedAlias {
				logger.Debug("page 1 repeats page 0, trying page 2", map[string]interface{}{"path": l.path})

				skippedAlias = true
				page++

				continue
			}

			logger.Debug("pagination stopped on repeated page", map[string]interface{}{"path": l.path, "page": page})

			return
		}

		if !l.emit(items, yield) {
			return
		}

		last = items
		page++
	}
}
