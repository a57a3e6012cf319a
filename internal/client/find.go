package client

import (
	"context"
	"encoding/json"
	"math"
	"reflect"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/spf13/cast"
)

// Find returns the first instance of the named resource whose fields match
// every criterion, or nil when none does. Without a cached collection the
// pages are fetched one at a time and fetching stops at the first page
// holding a match.
func (r *Resource) Find(ctx context.Context, name string, criteria gitlab3.Params, opts *gitlab3.FindOptions) (*Resource, error) {
	matches, err := r.find(ctx, name, criteria, opts, false)
	if err != nil || len(matches) == 0 {
		return nil, err
	}

	return matches[0], nil
}

// FindAll returns every matching instance, enumerating the whole collection.
func (r *Resource) FindAll(ctx context.Context, name string, criteria gitlab3.Params, opts *gitlab3.FindOptions) ([]*Resource, error) {
	return r.find(ctx, name, criteria, opts, true)
}

func (r *Resource) find(ctx context.Context, name string, criteria gitlab3.Params, opts *gitlab3.FindOptions, all bool) ([]*Resource, error) {
	if len(criteria) == 0 {
		return nil, gitlab3.Errorf(gitlab3.KindInvalidArgument, "find_%s needs at least one criterion", name)
	}

	typ, err := r.target("find_"+name, OperationFind)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &gitlab3.FindOptions{}
	}

	var matches []*Resource

	if len(opts.Cached) > 0 {
		for _, candidate := range opts.Cached {
			if !matchesCriteria(candidate, criteria) {
				continue
			}

			found, ok := candidate.(*Resource)
			if !ok {
				return nil, gitlab3.Errorf(gitlab3.KindTypeMismatch, "cached %s is a %T", name, candidate)
			}

			matches = append(matches, found)
			if !all {
				break
			}
		}

		return matches, nil
	}

	for candidate, err := range r.All(ctx, typ.def.PluralName(), &gitlab3.ListOptions{Filters: opts.Filters}) {
		if err != nil {
			return nil, err
		}

		if !matchesCriteria(candidate, criteria) {
			continue
		}

		matches = append(matches, candidate)
		if !all {
			break
		}
	}

	return matches, nil
}

func matchesCriteria(candidate gitlab3.Object, criteria gitlab3.Params) bool {
	for key, want := range criteria {
		have, ok := candidate.Field(key)
		if !ok || !valuesEqual(have, want) {
			return false
		}
	}

	return true
}

// valuesEqual compares a payload value with a criterion. Numbers compare by
// value whatever their Go type; other scalars of different types compare
// through their string form.
func valuesEqual(have, want any) bool {
	if haveNum, ok := numeric(have); ok {
		if wantNum, ok := numeric(want); ok {
			return haveNum.equal(wantNum)
		}
	}

	if have == nil || want == nil {
		return have == nil && want == nil
	}

	if reflect.TypeOf(have) != reflect.TypeOf(want) {
		haveText, errHave := cast.ToStringE(have)
		wantText, errWant := cast.ToStringE(want)

		return errHave == nil && errWant == nil && haveText == wantText
	}

	return reflect.DeepEqual(have, want)
}

type number struct {
	integral bool
	i        int64
	f        float64
}

func (n number) equal(other number) bool {
	if n.integral && other.integral {
		return n.i == other.i
	}

	return n.f == other.f
}

func numeric(value any) (number, bool) {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return number{integral: true, i: i, f: float64(i)}, true
		}

		f, err := typed.Float64()
		if err != nil {
			return number{}, false
		}

		return fromFloat(f), true
	case float32:
		return fromFloat(float64(typed)), true
	case float64:
		return fromFloat(typed), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := cast.ToInt64E(typed)
		if err != nil {
			return number{}, false
		}

		return number{integral: true, i: i, f: float64(i)}, true
	default:
		return number{}, false
	}
}

func fromFloat(f float64) number {
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return number{integral: true, i: int64(f), f: f}
	}

	return number{f: f}
}
