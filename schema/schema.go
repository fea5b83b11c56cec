// Package schema builds the declarative configuration-schema document a
// plugin publishes to the host. A plugin describes its user-configurable
// options through an ordered sequence of builder calls; the finished document
// is a tree that marshals to a JSON-Schema-shaped object the host UI renders.
package schema

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DataType enumerates the scalar types a property may declare.
type DataType string

// Scalar data types understood by the host UI.
const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeInteger DataType = "integer"
	TypeBoolean DataType = "boolean"
)

// Valid reports whether the data type is one of the declared scalar kinds.
func (d DataType) Valid() bool {
	switch d {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		return true
	}
	return false
}

// NodeKind discriminates the three node shapes in a schema document.
type NodeKind string

// Node kinds.
const (
	KindScalar NodeKind = "scalar"
	KindArray  NodeKind = "array"
	KindObject NodeKind = "object"
)

// Properties is an insertion-ordered property map. Redeclaring a name
// replaces the node but keeps its original position.
type Properties = orderedmap.OrderedMap[string, *Node]

// NewProperties creates an empty ordered property map.
func NewProperties() *Properties {
	return orderedmap.New[string, *Node]()
}

// Node is one vertex of the schema tree. Scalar nodes carry a DataType;
// object nodes carry Properties; array nodes carry one or the other depending
// on the item shape. Treat nodes as read-only once built.
type Node struct {
	Kind        NodeKind
	DataType    DataType // scalar nodes and arrays of scalars
	Title       string
	Description string
	Default     any
	Required    bool
	ItemTitle   string // arrays only
	// object nodes and arrays of objects; spelled as the underlying type
	// rather than the Properties alias because Go <1.23 rejects a generic
	// type alias inside a recursive type (go.dev/issue/50729).
	Properties *orderedmap.OrderedMap[string, *Node]
}

// Document is the finished schema tree. The root is always an object.
type Document struct {
	Properties *Properties
}

// MarshalJSON renders the document as a JSON-Schema object, preserving
// property declaration order.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, any]()
	out.Set("type", "object")
	out.Set("properties", d.Properties)
	return json.Marshal(out)
}

// MarshalJSON renders one node in the host's JSON-Schema dialect.
//
// A Required scalar is a declared "must hold a non-default value" constraint:
// strings render minLength 1, numeric types render minimum 1, and arrays
// render minItems 1. Booleans have no minimum-presence rule beyond existing.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, any]()

	switch n.Kind {
	case KindObject:
		out.Set("type", "object")
		setCommon(out, n)
		out.Set("properties", n.Properties)

	case KindArray:
		out.Set("type", "array")
		setCommon(out, n)
		if n.Default != nil {
			out.Set("default", n.Default)
		}
		if n.Required {
			out.Set("minItems", 1)
		}
		out.Set("items", n.marshalItems())

	default: // KindScalar
		out.Set("type", string(n.DataType))
		setCommon(out, n)
		if n.Default != nil {
			out.Set("default", n.Default)
		}
		if n.Required {
			switch n.DataType {
			case TypeString:
				out.Set("minLength", 1)
			case TypeNumber, TypeInteger:
				out.Set("minimum", 1)
			}
		}
	}

	return json.Marshal(out)
}

// marshalItems builds the items sub-schema for an array node.
func (n *Node) marshalItems() *orderedmap.OrderedMap[string, any] {
	items := orderedmap.New[string, any]()
	if n.Properties != nil {
		items.Set("type", "object")
		if n.ItemTitle != "" {
			items.Set("title", n.ItemTitle)
		}
		items.Set("properties", n.Properties)
		return items
	}
	items.Set("type", string(n.DataType))
	if n.ItemTitle != "" {
		items.Set("title", n.ItemTitle)
	}
	return items
}

func setCommon(out *orderedmap.OrderedMap[string, any], n *Node) {
	if n.Title != "" {
		out.Set("title", n.Title)
	}
	if n.Description != "" {
		out.Set("description", n.Description)
	}
}
