package client

import (
	"sort"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
)

// OperationKind is the generic executor an operation is served by.
type OperationKind string

// Operation kinds.
const (
	OperationList   OperationKind = "list"
	OperationFind   OperationKind = "find"
	OperationGet    OperationKind = "get"
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Operation is one entry of a type's operation table: a name bound on the
// parent type, served by the executor of Kind against Target.
type Operation struct {
	Name   string
	Kind   OperationKind
	Target *ResourceType
}

// ResourceType is generated once per resource definition when a connection
// is built.
type ResourceType struct {
	def            *gitlab3.ResourceDefinition
	parent         *ResourceType
	qualifiedURL   string
	unqualifiedURL string
	children       []*ResourceType
	operations     map[string]Operation
	actions        map[string]gitlab3.ActionFunc
}

// Name returns the resource name, e.g. "merge_request".
func (t *ResourceType) Name() string {
	return t.def.Name
}

// Definition returns the definition the type was bound from.
func (t *ResourceType) Definition() *gitlab3.ResourceDefinition {
	return t.def
}

// Parent returns the parent type, nil for the root.
func (t *ResourceType) Parent() *ResourceType {
	return t.parent
}

// QualifiedURL returns the template addressing one instance.
func (t *ResourceType) QualifiedURL() string {
	return t.qualifiedURL
}

// UnqualifiedURL returns the collection template used by list and create.
func (t *ResourceType) UnqualifiedURL() string {
	return t.unqualifiedURL
}

// Children returns the sub-resource types in declaration order.
func (t *ResourceType) Children() []*ResourceType {
	return append([]*ResourceType(nil), t.children...)
}

// Child returns the sub-resource type called name.
func (t *ResourceType) Child(name string) (*ResourceType, bool) {
	for _, child := range t.children {
		if child.def.Name == name {
			return child, true
		}
	}

	return nil, false
}

// Operation looks up an entry of the operation table.
func (t *ResourceType) Operation(name string) (Operation, bool) {
	op, ok := t.operations[name]

	return op, ok
}

// Operations returns the operation table sorted by name.
func (t *ResourceType) Operations() []Operation {
	ops := make([]Operation, 0, len(t.operations))
	for _, op := range t.operations {
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })

	return ops
}

// Actions returns the names of the extra actions, sorted.
func (t *ResourceType) Actions() []string {
	names := make([]string, 0, len(t.actions))
	for name := range t.actions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// HasAction reports whether the type supports the standard action.
func (t *ResourceType) HasAction(action gitlab3.Action) bool {
	return t.def.Actions.Has(action)
}

// bind generates the type for def, registers its operations on parent and
// recurses into the sub-resources. The root definition is validated first.
func (c *Connection) bind(def *gitlab3.ResourceDefinition, parent *ResourceType) (*ResourceType, error) {
	if parent == nil {
		err := def.Validate()
		if err != nil {
			return nil, err
		}
	}

	typ := &ResourceType{
		def:        def,
		parent:     parent,
		operations: map[string]Operation{},
		actions:    map[string]gitlab3.ActionFunc{},
	}

	if parent == nil {
		typ.qualifiedURL = def.URL
		typ.unqualifiedURL = stripPlaceholder(def.URL)
	} else {
		base := parent.qualifiedURL
		if parent.parent == nil {
			base = parent.unqualifiedURL
		}

		typ.qualifiedURL = parent.qualifiedURL + def.URL
		typ.unqualifiedURL = base + stripPlaceholder(def.URL)

		parent.children = append(parent.children, typ)
		registerOperations(parent, typ)
	}

	for i := range def.ExtraActions {
		action := &def.ExtraActions[i]

		fn := c.dispatcher(typ, action)
		if action.Wrapper != nil {
			fn = action.Wrapper(fn, def.Name)
		}

		typ.actions[action.Name] = fn
	}

	for i := range def.SubResources {
		_, err := c.bind(&def.SubResources[i], typ)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("bound resource type", map[string]interface{}{
		"resource":    def.Name,
		"qualified":   typ.qualifiedURL,
		"unqualified": typ.unqualifiedURL,
	})

	return typ, nil
}

// registerOperations adds the standard operations of typ to the table of its
// parent. Names that already exist are overwritten.
func registerOperations(parent, typ *ResourceType) {
	def := typ.def
	add := func(name string, kind OperationKind) {
		parent.operations[name] = Operation{Name: name, Kind: kind, Target: typ}
	}

	if def.Actions.Has(gitlab3.ActionList) {
		add(def.PluralName(), OperationList)
		add("find_"+def.Name, OperationFind)
	}

	if def.Actions.Has(gitlab3.ActionGet) {
		add("get_"+def.Name, OperationGet)
		add(def.Name, OperationGet)
	}

	if def.Actions.Has(gitlab3.ActionCreate) {
		add("add_"+def.Name, OperationCreate)
	}

	if def.Actions.Has(gitlab3.ActionUpdate) {
		add("update_"+def.Name, OperationUpdate)
	}

	if def.Actions.Has(gitlab3.ActionDelete) {
		add("delete_"+def.Name, OperationDelete)
	}
}
