package gitlab3

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Action is a set of standard operations a resource supports.
type Action uint8

const (
	ActionList Action = 1 << iota
	ActionGet
	ActionCreate
	ActionUpdate
	ActionDelete

	ActionAll = ActionList | ActionGet | ActionCreate | ActionUpdate | ActionDelete
)

// Has reports whether every action in other is part of a.
func (a Action) Has(other Action) bool {
	return a&other == other
}

func (a Action) String() string {
	names := []string{}

	for _, candidate := range []struct {
		action Action
		name   string
	}{
		{ActionList, "list"},
		{ActionGet, "get"},
		{ActionCreate, "create"},
		{ActionUpdate, "update"},
		{ActionDelete, "delete"},
	} {
		if a.Has(candidate.action) {
			names = append(names, candidate.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ",")
}

// Params carries named request parameters. GET and DELETE requests send them
// as query parameters, POST and PUT requests as a JSON body.
type Params map[string]any

// Clone returns a shallow copy of p that is never nil.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for key, value := range p {
		out[key] = value
	}

	return out
}

// Object is the view of a resource instance handed to action wrappers.
type Object interface {
	TypeName() string
	ID() any
	Field(name string) (any, bool)
	SetField(name string, value any)
	// Wrap builds an instance of the named sub-resource owned by the receiver.
	Wrap(resource string, payload any) (Object, error)
}

// ActionFunc is a bound extra action. Args are the positional URL and
// required parameters, in declared order.
type ActionFunc func(ctx context.Context, self Object, args []any, params Params) (any, error)

// ActionWrapper decorates an undecorated ActionFunc. Owner is the name of the
// resource type the action is bound on.
type ActionWrapper func(next ActionFunc, owner string) ActionFunc

// ActionDefinition describes a single-purpose endpoint bound on a resource.
type ActionDefinition struct {
	Name string
	// URL is appended to the owner's qualified URL. Its placeholders are
	// filled from URLParams.
	URL            string
	Method         string
	URLParams      []string
	RequiredParams []string
	OptionalParams []string
	Wrapper        ActionWrapper
}

// ResourceDefinition describes one resource of the API hierarchy.
type ResourceDefinition struct {
	Name string
	// Plural defaults to Name + "s".
	Plural string
	// URL is relative to the parent's qualified URL. A resource that can be
	// addressed individually ends with a single placeholder segment.
	URL string
	// KeyName is the payload field holding the identity. Defaults to "id".
	KeyName        string
	Actions        Action
	RequiredParams []string
	OptionalParams []string
	ExtraActions   []ActionDefinition
	SubResources   []ResourceDefinition
}

// DefaultKeyName is the identity field used when a definition names none.
const DefaultKeyName = "id"

var placeholderPattern = regexp.MustCompile(`:[^/]+`)

// CountPlaceholders returns the number of ":name" segments in template.
func CountPlaceholders(template string) int {
	return len(placeholderPattern.FindAllStringIndex(template, -1))
}

// PluralName returns the list operation name.
func (d *ResourceDefinition) PluralName() string {
	if d.Plural != "" {
		return d.Plural
	}

	return d.Name + "s"
}

// KeyField returns the identity field name.
func (d *ResourceDefinition) KeyField() string {
	if d.KeyName != "" {
		return d.KeyName
	}

	return DefaultKeyName
}

// Validate checks the definition and all of its sub-resources. The returned
// error is of kind KindMalformedTemplate.
func (d *ResourceDefinition) Validate() error {
	return d.validate(d.Name)
}

func (d *ResourceDefinition) validate(path string) error {
	if d.Name == "" {
		return Errorf(KindMalformedTemplate, "%s: resource without a name", path)
	}

	slots := placeholderPattern.FindAllStringIndex(d.URL, -1)
	if len(slots) > 1 {
		return Errorf(KindMalformedTemplate, "%s: url %q has %d placeholders, at most one is allowed", path, d.URL, len(slots))
	}

	if len(slots) == 1 && slots[0][1] != len(d.URL) {
		return Errorf(KindMalformedTemplate, "%s: placeholder in url %q must be the last segment", path, d.URL)
	}

	if len(slots) == 0 && d.Actions.Has(ActionGet) && d.URL == "" {
		return Errorf(KindMalformedTemplate, "%s: get requires a url", path)
	}

	names := map[string]bool{}

	for _, action := range d.ExtraActions {
		if action.Name == "" {
			return Errorf(KindMalformedTemplate, "%s: extra action without a name", path)
		}

		if names[action.Name] {
			return Errorf(KindMalformedTemplate, "%s: duplicate extra action %q", path, action.Name)
		}

		names[action.Name] = true

		if action.Method == "" {
			return Errorf(KindMalformedTemplate, "%s.%s: missing http method", path, action.Name)
		}

		if got := CountPlaceholders(action.URL); got != len(action.URLParams) {
			return Errorf(KindMalformedTemplate, "%s.%s: url %q has %d placeholders for %d url params",
				path, action.Name, action.URL, got, len(action.URLParams))
		}
	}

	ops := map[string]string{}

	for i := range d.SubResources {
		sub := &d.SubResources[i]

		for _, op := range sub.OperationNames() {
			if owner, exists := ops[op]; exists {
				return Errorf(KindMalformedTemplate, "%s: operation %q bound by both %s and %s", path, op, owner, sub.Name)
			}

			if names[op] {
				return Errorf(KindMalformedTemplate, "%s: operation %q of %s shadows an extra action", path, op, sub.Name)
			}

			ops[op] = sub.Name
		}

		err := sub.validate(fmt.Sprintf("%s.%s", path, sub.Name))
		if err != nil {
			return err
		}
	}

	return nil
}

// OperationNames returns the names this resource binds on its parent, in
// binding order.
func (d *ResourceDefinition) OperationNames() []string {
	var names []string

	if d.Actions.Has(ActionList) {
		names = append(names, d.PluralName(), "find_"+d.Name)
	}

	if d.Actions.Has(ActionGet) {
		names = append(names, "get_"+d.Name, d.Name)
	}

	if d.Actions.Has(ActionCreate) {
		names = append(names, "add_"+d.Name)
	}

	if d.Actions.Has(ActionUpdate) {
		names = append(names, "update_"+d.Name)
	}

	if d.Actions.Has(ActionDelete) {
		names = append(names, "delete_"+d.Name)
	}

	return names
}
