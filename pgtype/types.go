// Package pgtype canonicalizes PostgreSQL catalog types into the
// closed set of shapes the rest of the pipeline understands: simple
// scalars, arrays, domains, and user-defined enum/composite types. Each
// registered type carries the is_copy/is_params flags the preparer and
// IR assembler need.
package pgtype

import "encoding/json"

// Type is the closed sum of canonicalized PostgreSQL types. It is
// implemented only by the four variants in this package.
type Type interface {
	typeMarker()
	// SchemaName returns the type's (schema, name), the identity ir
	// compares when checking two field lists for equality.
	SchemaName() (schema, name string)
	// IsCopy reports whether a value of this type can be copied by
	// value instead of needing a borrowed/owned distinction.
	IsCopy() bool
	// IsParams reports whether this type can appear as a bind
	// parameter: every contained reference type must have a borrowed
	// counterpart available.
	IsParams() bool
}

// SimpleType is a builtin scalar, e.g. int4, text, uuid.
type SimpleType struct {
	Schema string
	Name   string
	Copy   bool
}

func (SimpleType) typeMarker() {}
func (t SimpleType) SchemaName() (string, string) { return t.Schema, t.Name }
func (t SimpleType) IsCopy() bool                 { return t.Copy }
func (t SimpleType) IsParams() bool               { return true }

func (t SimpleType) MarshalJSON() ([]byte, error) {
	type alias SimpleType
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"simple", alias(t)})
}

// ArrayType wraps an element Type. Arrays are never is_copy; they are
// is_params exactly when their element type is.
type ArrayType struct {
	Schema string
	Name   string
	Elem   Type
}

func (ArrayType) typeMarker() {}
func (t ArrayType) SchemaName() (string, string) { return t.Schema, t.Name }
func (t ArrayType) IsCopy() bool                 { return false }
func (t ArrayType) IsParams() bool               { return t.Elem.IsParams() }

func (t ArrayType) MarshalJSON() ([]byte, error) {
	type alias ArrayType
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"array", alias(t)})
}

// DomainType wraps a base Type, inheriting its copy/params semantics.
type DomainType struct {
	Schema string
	Name   string
	Base   Type
}

func (DomainType) typeMarker() {}
func (t DomainType) SchemaName() (string, string) { return t.Schema, t.Name }
func (t DomainType) IsCopy() bool                 { return t.Base.IsCopy() }
func (t DomainType) IsParams() bool               { return t.Base.IsParams() }

func (t DomainType) MarshalJSON() ([]byte, error) {
	type alias DomainType
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"domain", alias(t)})
}

// CustomContent is the closed sum for a CustomType's payload: either an
// enum's ordered variant list or a composite's ordered field list.
type CustomContent interface {
	customContentMarker()
}

// EnumContent holds an enum's variant labels in declaration order.
type EnumContent struct {
	Variants []string
}

func (EnumContent) customContentMarker() {}

func (c EnumContent) MarshalJSON() ([]byte, error) {
	type alias EnumContent
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"enum", alias(c)})
}

// CompositeField is one field of a composite type.
type CompositeField struct {
	Name string
	Type Type
}

// CompositeContent holds a composite type's fields in attribute order.
type CompositeContent struct {
	Fields []CompositeField
}

func (CompositeContent) customContentMarker() {}

func (c CompositeContent) MarshalJSON() ([]byte, error) {
	type alias CompositeContent
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"composite", alias(c)})
}

// CustomType is a user-defined enum or composite. It is the only
// variant the emitter would need to generate a type definition for.
type CustomType struct {
	Schema  string
	Name    string
	Content CustomContent
}

func (CustomType) typeMarker() {}
func (t CustomType) SchemaName() (string, string) { return t.Schema, t.Name }

func (t CustomType) MarshalJSON() ([]byte, error) {
	type alias CustomType
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"custom", alias(t)})
}

func (t CustomType) IsCopy() bool {
	switch c := t.Content.(type) {
	case EnumContent:
		return true
	case CompositeContent:
		for _, f := range c.Fields {
			if !f.Type.IsCopy() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (t CustomType) IsParams() bool {
	switch c := t.Content.(type) {
	case EnumContent:
		return true
	case CompositeContent:
		for _, f := range c.Fields {
			if !f.Type.IsParams() {
				return false
			}
			if !f.Type.IsCopy() && !isBorrowable(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isBorrowable reports whether a non-copy field type has a borrowed
// counterpart available to the emitter: a string scalar, or another
// params-compatible custom/domain/array type.
func isBorrowable(t Type) bool {
	switch v := t.(type) {
	case SimpleType:
		return isStringScalar(v.Name)
	case ArrayType, DomainType, CustomType:
		return t.IsParams()
	default:
		return false
	}
}
