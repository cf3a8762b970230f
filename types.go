// types.go: the primitive type lattice and coercion rules.
//
// The lattice is pure data plus pure functions; it holds no state. The parser
// consults it on every operator application while building IR nodes.
//
// Numeric promotion follows the partial order Int < Long < Double and is
// applied only where the grammar explicitly calls for it: equality (when the
// operand types differ and both are numeric) and ordered comparisons. The
// additive, multiplicative and bitwise families only *check* their operands
// and never widen — a mismatched Int/Long pair flows into the IR as-is and is
// rejected by the backend at build time. This asymmetry is deliberate;
// unifying it would change observable type-error behavior.
package slate

import "fmt"

// PrimitiveType identifies a static type in the lattice.
type PrimitiveType int

const (
	TypeInt PrimitiveType = iota
	TypeLong
	TypeDouble
	TypeString
	TypeChar
	TypeBool
	TypeObject
	TypeVoid
	TypeUser // user-defined, resolved through a TypeRegistry
)

func (t PrimitiveType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeChar:
		return "char"
	case TypeBool:
		return "bool"
	case TypeObject:
		return "object"
	case TypeVoid:
		return "void"
	case TypeUser:
		return "<user>"
	default:
		return "<invalid>"
	}
}

// Numeric reports whether t participates in the promotion lattice.
func Numeric(t PrimitiveType) bool {
	return t == TypeInt || t == TypeLong || t == TypeDouble
}

// Integer reports whether t is an integral numeric type (Double excluded).
func Integer(t PrimitiveType) bool {
	return t == TypeInt || t == TypeLong
}

// promoteTable maps a numeric pair to its common representation. Indexed by
// the (Int, Long, Double) ordinals; symmetric by construction.
var promoteTable = [3][3]PrimitiveType{
	{TypeInt, TypeLong, TypeDouble},
	{TypeLong, TypeLong, TypeDouble},
	{TypeDouble, TypeDouble, TypeDouble},
}

// Promote returns the wider of two numeric types. It is defined only for
// numeric inputs; anything else returns a TypeError-kind error with no
// position (the caller stamps the operator token).
func Promote(a, b PrimitiveType) (PrimitiveType, error) {
	if !Numeric(a) || !Numeric(b) {
		return TypeVoid, &Error{Kind: DiagType, Msg: fmt.Sprintf("cannot promote %s and %s", a, b)}
	}
	return promoteTable[int(a)][int(b)], nil
}

// Coerce wraps n in an explicit conversion when its static type differs from
// target; identity otherwise. Both widening and narrowing conversions are
// expressed the same way — the backend performs the representation change.
func Coerce(n Node, target PrimitiveType) Node {
	if n.Type() == target {
		return n
	}
	return &Convert{Value: n, Target: target}
}

// RequireNumeric returns n unchanged or a TypeError naming the offending type.
func RequireNumeric(n Node) (Node, error) {
	if !Numeric(n.Type()) {
		return nil, &Error{Kind: DiagType, Msg: fmt.Sprintf("operand must be numeric, got %s", n.Type())}
	}
	return n, nil
}

// RequireInteger returns n unchanged or a TypeError. Double is rejected.
func RequireInteger(n Node) (Node, error) {
	if !Integer(n.Type()) {
		return nil, &Error{Kind: DiagType, Msg: fmt.Sprintf("operand must be an integer type, got %s", n.Type())}
	}
	return n, nil
}

// RequireBoolean returns n unchanged or a TypeError.
func RequireBoolean(n Node) (Node, error) {
	if n.Type() != TypeBool {
		return nil, &Error{Kind: DiagType, Msg: fmt.Sprintf("operand must be bool, got %s", n.Type())}
	}
	return n, nil
}

// TypeRegistry resolves user-defined type names. The host environment
// populates it explicitly; nothing in the grammar declares entries. The
// lookup hook exists so embedders can extend the lattice without the front
// end assuming any global type discovery.
type TypeRegistry struct {
	names map[string]PrimitiveType
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{names: map[string]PrimitiveType{}}
}

// Register binds name to a lattice type. Later registrations win.
func (r *TypeRegistry) Register(name string, t PrimitiveType) {
	r.names[name] = t
}

// Resolve looks up a user-defined type name.
func (r *TypeRegistry) Resolve(name string) (PrimitiveType, bool) {
	t, ok := r.names[name]
	return t, ok
}
