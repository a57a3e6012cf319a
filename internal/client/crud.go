package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
)

// Get fetches one instance of the named resource owned by r. A nil id
// addresses singletons such as the current user; query is sent as query
// parameters.
func (r *Resource) Get(ctx context.Context, name string, id any, query gitlab3.Params) (*Resource, error) {
	typ, err := r.target("get_"+name, OperationGet)
	if err != nil {
		return nil, err
	}

	var keys []any
	if id != nil {
		keys = append(keys, id)
	}

	path, err := resolveURL(typ.qualifiedURL, r, keys...)
	if err != nil {
		return nil, err
	}

	values, err := encodeQuery(query)
	if err != nil {
		return nil, err
	}

	payload, err := r.conn.request(ctx, http.MethodGet, path, values, nil)
	if err != nil {
		return nil, err
	}

	return r.wrapPayload(typ, payload)
}

// Create adds an instance of the named resource owned by r. Positional args
// fill the required parameters and then the optional ones, in declared
// order, and take precedence over params.
func (r *Resource) Create(ctx context.Context, name string, params gitlab3.Params, args ...any) (*Resource, error) {
	typ, err := r.target("add_"+name, OperationCreate)
	if err != nil {
		return nil, err
	}

	required := typ.def.RequiredParams
	optional := typ.def.OptionalParams

	if len(args) < len(required) || len(args) > len(required)+len(optional) {
		return nil, gitlab3.Errorf(gitlab3.KindInvalidArgument,
			"add_%s takes %d to %d arguments, got %d", name, len(required), len(required)+len(optional), len(args))
	}

	body := params.Clone()
	names := append(append([]string(nil), required...), optional...)

	for i, arg := range args {
		body[names[i]] = arg
	}

	path, err := resolveURL(typ.unqualifiedURL, r)
	if err != nil {
		return nil, err
	}

	payload, err := r.conn.request(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}

	return r.wrapPayload(typ, payload)
}

// UpdateResource saves obj, which must be an instance of the named resource.
func (r *Resource) UpdateResource(ctx context.Context, name string, obj *Resource) error {
	typ, err := r.target("update_"+name, OperationUpdate)
	if err != nil {
		return err
	}

	err = checkType(typ, obj)
	if err != nil {
		return err
	}

	return obj.save(ctx)
}

// DeleteResource deletes obj, which must be an instance of the named
// resource.
func (r *Resource) DeleteResource(ctx context.Context, name string, obj *Resource) error {
	typ, err := r.target("delete_"+name, OperationDelete)
	if err != nil {
		return err
	}

	err = checkType(typ, obj)
	if err != nil {
		return err
	}

	return obj.remove(ctx)
}

// Save sends every tracked field to the server and reloads the fields from
// the response.
func (r *Resource) Save(ctx context.Context) error {
	if !r.typ.HasAction(gitlab3.ActionUpdate) {
		return gitlab3.Errorf(gitlab3.KindInvalidArgument, "%s does not support update", r.typ.Name())
	}

	return r.save(ctx)
}

// Delete deletes the instance on the server.
func (r *Resource) Delete(ctx context.Context) error {
	if !r.typ.HasAction(gitlab3.ActionDelete) {
		return gitlab3.Errorf(gitlab3.KindInvalidArgument, "%s does not support delete", r.typ.Name())
	}

	return r.remove(ctx)
}

func (r *Resource) save(ctx context.Context) error {
	path, err := resolveURL(r.typ.qualifiedURL, r)
	if err != nil {
		return err
	}

	payload, err := r.conn.request(ctx, http.MethodPut, path, nil, r.fields)
	if err != nil {
		return err
	}

	if fields, ok := payload.(*gitlab3.Fields); ok {
		r.load(fields)
	}

	return nil
}

func (r *Resource) remove(ctx context.Context) error {
	path, err := resolveURL(r.typ.qualifiedURL, r)
	if err != nil {
		return err
	}

	_, err = r.conn.request(ctx, http.MethodDelete, path, nil, nil)

	return err
}

func checkType(want *ResourceType, obj *Resource) error {
	if obj == nil {
		return gitlab3.Errorf(gitlab3.KindTypeMismatch, "expected a %s, got nil", want.Name())
	}

	if obj.typ != want {
		return gitlab3.Errorf(gitlab3.KindTypeMismatch, "expected a %s, got a %s", want.Name(), obj.typ.Name())
	}

	return nil
}

func (r *Resource) wrapPayload(typ *ResourceType, payload any) (*Resource, error) {
	fields, ok := payload.(*gitlab3.Fields)
	if !ok {
		return nil, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrUnexpectedPayload, "expected a %s object, got %T", typ.Name(), payload)
	}

	return r.conn.newResource(typ, r, fields), nil
}
