package client

import (
	"encoding/json"
	"time"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/spf13/cast"
)

// Resource is one instance of a bound resource type: an identity, a
// back-reference to the owning instance and the fields of the last payload.
//
// The tracked field set is exactly the key set of the last payload the
// instance was built or saved from. Setting an unknown field stores it
// locally without tracking it, so it is never sent by Save.
type Resource struct {
	conn   *Connection
	typ    *ResourceType
	parent *Resource
	id     any
	fields *gitlab3.Fields
	attrs  map[string]any
}

func (c *Connection) newResource(typ *ResourceType, parent *Resource, fields *gitlab3.Fields) *Resource {
	r := &Resource{conn: c, typ: typ, parent: parent}
	r.load(fields)

	return r
}

// load replaces the tracked fields and re-reads the identity.
func (r *Resource) load(fields *gitlab3.Fields) {
	if fields == nil {
		fields = gitlab3.NewFields()
	}

	r.fields = fields
	r.id = nil

	if raw, ok := fields.Get(r.typ.def.KeyField()); ok {
		r.id = normalizeIdentity(raw)
	}

	for _, key := range fields.Keys() {
		delete(r.attrs, key)
	}
}

// normalizeIdentity turns integral JSON numbers into int64 and other numbers
// into their text.
func normalizeIdentity(raw any) any {
	number, ok := raw.(json.Number)
	if !ok {
		return raw
	}

	if i, err := number.Int64(); err == nil {
		return i
	}

	return number.String()
}

// Ref returns an identity-only instance of the named sub-resource owned by
// r, for addressing nested resources without fetching them.
func (r *Resource) Ref(name string, id any) (*Resource, error) {
	typ, ok := r.typ.Child(name)
	if !ok {
		return nil, gitlab3.WrapError(gitlab3.KindInvalidArgument, gitlab3.ErrUnknownResource, "%s has no sub-resource %q", r.typ.Name(), name)
	}

	return r.conn.newResource(typ, r, gitlab3.FieldsOf(typ.def.KeyField(), id)), nil
}

// Wrap builds an instance of the named sub-resource owned by r from a
// decoded payload object.
func (r *Resource) Wrap(resource string, payload any) (gitlab3.Object, error) {
	typ, ok := r.typ.Child(resource)
	if !ok {
		return nil, gitlab3.WrapError(gitlab3.KindInvalidArgument, gitlab3.ErrUnknownResource, "%s has no sub-resource %q", r.typ.Name(), resource)
	}

	fields, ok := payload.(*gitlab3.Fields)
	if !ok {
		return nil, gitlab3.WrapError(gitlab3.KindServerError, gitlab3.ErrUnexpectedPayload, "expected an object for %s, got %T", resource, payload)
	}

	return r.conn.newResource(typ, r, fields), nil
}

// TypeName returns the resource name of the instance's type.
func (r *Resource) TypeName() string {
	return r.typ.Name()
}

// Type returns the instance's type.
func (r *Resource) Type() *ResourceType {
	return r.typ
}

// ID returns the identity, or nil for instances without one.
func (r *Resource) ID() any {
	return r.id
}

// Parent returns the owning instance, nil for the root.
func (r *Resource) Parent() *Resource {
	return r.parent
}

// Fields returns a copy of the tracked fields.
func (r *Resource) Fields() *gitlab3.Fields {
	return r.fields.Clone()
}

// Field returns a tracked field, falling back to local attributes.
func (r *Resource) Field(name string) (any, bool) {
	if value, ok := r.fields.Get(name); ok {
		return value, true
	}

	value, ok := r.attrs[name]

	return value, ok
}

// Text returns a field coerced to a string, "" when missing.
func (r *Resource) Text(name string) string {
	value, _ := r.Field(name)

	return cast.ToString(value)
}

// SetField assigns a field. Tracked fields are updated in place; other names
// are stored locally.
func (r *Resource) SetField(name string, value any) {
	if r.fields.Has(name) {
		r.fields.Set(name, value)

		if name == r.typ.def.KeyField() {
			r.id = normalizeIdentity(value)
		}

		return
	}

	if r.attrs == nil {
		r.attrs = map[string]any{}
	}

	r.attrs[name] = value
}

// Time parses one of the well-known timestamp fields. A missing or null
// field yields the zero time.
func (r *Resource) Time(name string) (time.Time, error) {
	if !gitlab3.IsTimestampField(name) {
		return time.Time{}, &gitlab3.Error{Kind: gitlab3.KindInvalidArgument, Message: name, Err: gitlab3.ErrNotATimestampField}
	}

	value, ok := r.Field(name)
	if !ok || value == nil {
		return time.Time{}, nil
	}

	text, err := cast.ToStringE(value)
	if err != nil {
		return time.Time{}, &gitlab3.Error{Kind: gitlab3.KindInvalidArgument, Message: name, Err: err}
	}

	return gitlab3.ParseTimestamp(text)
}

// MarshalJSON renders the tracked fields.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return r.fields.MarshalJSON()
}

// MarshalYAML renders the tracked fields.
func (r *Resource) MarshalYAML() (interface{}, error) {
	return r.fields.MarshalYAML()
}
