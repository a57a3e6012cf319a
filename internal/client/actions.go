package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
)

// Call invokes an extra action of r's type. Args are the URL parameters
// followed by the required parameters, in declared order.
func (r *Resource) Call(ctx context.Context, action string, args ...any) (any, error) {
	return r.CallWithParams(ctx, action, nil, args...)
}

// CallWithParams is Call with additional named parameters, typically the
// action's optional ones.
func (r *Resource) CallWithParams(ctx context.Context, action string, params gitlab3.Params, args ...any) (any, error) {
	fn, ok := r.typ.actions[action]
	if !ok {
		return nil, gitlab3.WrapError(gitlab3.KindInvalidArgument, gitlab3.ErrUnknownOperation, "%s has no action %q", r.typ.Name(), action)
	}

	return fn(ctx, r, args, params)
}

// dispatcher builds the undecorated function of an extra action bound on
// typ.
func (c *Connection) dispatcher(typ *ResourceType, def *gitlab3.ActionDefinition) gitlab3.ActionFunc {
	template := typ.qualifiedURL + def.URL
	arity := len(def.URLParams) + len(def.RequiredParams)

	return func(ctx context.Context, self gitlab3.Object, args []any, params gitlab3.Params) (any, error) {
		if len(args) != arity {
			return nil, gitlab3.Errorf(gitlab3.KindInvalidArgument,
				"%s.%s takes %d arguments, got %d", typ.Name(), def.Name, arity, len(args))
		}

		owner, ok := self.(*Resource)
		if !ok || owner.typ != typ {
			return nil, gitlab3.Errorf(gitlab3.KindTypeMismatch, "%s.%s called on %T", typ.Name(), def.Name, self)
		}

		path, err := resolveURL(template, owner, args[:len(def.URLParams)]...)
		if err != nil {
			return nil, err
		}

		data := params.Clone()
		for i, name := range def.RequiredParams {
			data[name] = args[len(def.URLParams)+i]
		}

		switch def.Method {
		case http.MethodGet, http.MethodDelete:
			query, err := encodeQuery(data)
			if err != nil {
				return nil, err
			}

			return c.request(ctx, def.Method, path, query, nil)
		default:
			var body any
			if len(data) > 0 {
				body = data
			}

			return c.request(ctx, def.Method, path, nil, body)
		}
	}
}
