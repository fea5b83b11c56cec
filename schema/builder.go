package schema

import (
	"fmt"

	"github.com/joelkoz/signalk-plugin-base/errors"
)

// Builder accumulates option declarations into a schema document. Nested
// objects are built with a flat, linear call sequence: BeginObject pushes the
// new object's property map as the current container, EndObject pops it, and
// every declaration targets whatever container is on top of the stack.
//
// Builder misuse (EndObject past the root, Schema with objects still open)
// fails loudly at the call site so authoring bugs surface during plugin
// development, not at option-filling time.
//
// Builder is not safe for concurrent use; schemas are declared from a single
// goroutine during plugin construction.
type Builder struct {
	root  *Properties
	stack []*Properties
}

// NewBuilder creates a builder whose context stack holds only the root
// container.
func NewBuilder() *Builder {
	root := NewProperties()
	return &Builder{
		root:  root,
		stack: []*Properties{root},
	}
}

// Scalar declares one scalar (or array-of-scalar) property.
type Scalar struct {
	Kind        DataType // string, number, integer, or boolean
	Name        string   // property key within the current container
	Title       string
	Default     any
	Array       bool // declare an array of Kind instead of a single value
	Description string
	Required    bool // must hold a non-default value (see Node.MarshalJSON)
	ItemTitle   string
}

// Object declares one nested object (or array-of-object) property.
type Object struct {
	Name        string
	Title       string
	Array       bool
	Description string
	ItemTitle   string // title of each array element
}

// DeclareScalar inserts a scalar or scalar-array node under the current
// container. Redeclaring an existing name replaces the prior node in place
// (last write wins, original position kept).
func (b *Builder) DeclareScalar(s Scalar) error {
	if s.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Builder", "DeclareScalar", "property name validation")
	}
	if !s.Kind.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownDataType, s.Kind),
			"Builder", "DeclareScalar", "data type validation")
	}

	node := &Node{
		Kind:        KindScalar,
		DataType:    s.Kind,
		Title:       s.Title,
		Description: s.Description,
		Default:     s.Default,
		Required:    s.Required,
	}
	if s.Array {
		node.Kind = KindArray
		node.ItemTitle = s.ItemTitle
	}

	b.top().Set(s.Name, node)
	return nil
}

// BeginObject inserts an object (or array-of-object) node under the current
// container and pushes the new object's property map onto the context stack.
// Every subsequent declaration targets the new container until the matching
// EndObject call.
func (b *Builder) BeginObject(o Object) error {
	if o.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Builder", "BeginObject", "property name validation")
	}

	props := NewProperties()
	node := &Node{
		Kind:        KindObject,
		Title:       o.Title,
		Description: o.Description,
		Properties:  props,
	}
	if o.Array {
		node.Kind = KindArray
		node.ItemTitle = o.ItemTitle
	}

	b.top().Set(o.Name, node)
	b.stack = append(b.stack, props)
	return nil
}

// EndObject pops the context stack. Calling it with only the root container
// remaining is a programming error and fails immediately.
func (b *Builder) EndObject() error {
	if len(b.stack) == 1 {
		return errors.WrapInvalid(errors.ErrSchemaUnderflow,
			"Builder", "EndObject", "context stack check")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Depth reports how many objects are currently open (0 when only the root
// container is on the stack).
func (b *Builder) Depth() int {
	return len(b.stack) - 1
}

// Schema returns the finished document. It fails when BeginObject calls are
// still unmatched, since handing out a partially built tree would hide the
// authoring bug until much later.
func (b *Builder) Schema() (*Document, error) {
	if len(b.stack) != 1 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %d open", errors.ErrSchemaUnbalanced, b.Depth()),
			"Builder", "Schema", "context stack check")
	}
	return &Document{Properties: b.root}, nil
}

// FillDefaults sets each missing top-level option to its declared default.
// Present keys are never overwritten, and nested object defaults are not
// applied recursively; this is the shallow contract plugin start-up relies
// on. A nil map is treated as empty. The (possibly newly allocated) map is
// returned.
func (b *Builder) FillDefaults(options map[string]any) map[string]any {
	if options == nil {
		options = make(map[string]any)
	}

	for pair := b.root.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Default == nil {
			continue
		}
		if _, present := options[pair.Key]; !present {
			options[pair.Key] = pair.Value.Default
		}
	}

	return options
}

func (b *Builder) top() *Properties {
	return b.stack[len(b.stack)-1]
}
