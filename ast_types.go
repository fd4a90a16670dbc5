package eightebed

import "fmt"

// Type is the common interface for the five Type variants (spec Data
// Model): Int, Void, Struct, Ptr, Named.
type Type interface {
	// Equiv reports structural/nominal equivalence per spec §4.3:
	// Int==Int, Ptr(a)==Ptr(b) iff a≡b, Named(a)==Named(b) iff
	// a==b by name, and Struct≡Struct is always false.
	Equiv(other Type) bool

	// PointsTo returns the pointee type if this is a Ptr, else nil.
	PointsTo() Type

	// Resolve follows a Named type through the type environment; all
	// other variants resolve to themselves.
	Resolve(types *Env[Type]) Type

	String() string
}

// TypeInt is the built-in integer type.
type TypeInt struct{}

func (TypeInt) Equiv(other Type) bool         { _, ok := other.(TypeInt); return ok }
func (TypeInt) PointsTo() Type                { return nil }
func (t TypeInt) Resolve(*Env[Type]) Type     { return t }
func (TypeInt) String() string                { return "int" }

// TypeVoid is the void type. The checker never produces it (checkStmt
// returns only an error, no result type), and it is never named or
// declared.
type TypeVoid struct{}

func (TypeVoid) Equiv(other Type) bool     { _, ok := other.(TypeVoid); return ok }
func (TypeVoid) PointsTo() Type            { return nil }
func (t TypeVoid) Resolve(*Env[Type]) Type { return t }
func (TypeVoid) String() string            { return "void" }

// TypeStruct is a struct type with an ordered member list and a
// process-(compilation-)wide unique id, assigned at parse construction
// time (spec §3, §9). Struct equivalence is always false: structs
// only compare equal nominally, through the Named type that wraps
// their declared name.
type TypeStruct struct {
	ID      int
	Members []Decl
}

func (s *TypeStruct) Equiv(Type) bool         { return false }
func (s *TypeStruct) PointsTo() Type          { return nil }
func (s *TypeStruct) Resolve(*Env[Type]) Type { return s }
func (s *TypeStruct) String() string          { return fmt.Sprintf("struct#%d", s.ID) }

// MemberType returns the type of the named member, or nil if there is
// no such member.
func (s *TypeStruct) MemberType(name string) Type {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Type
		}
	}
	return nil
}

// TypePtr is a pointer to a Named type. checkType requires Target to
// be a Named type; since only structs may be named, a declared target
// name resolves to a Struct. Whether the name is declared at all is not
// checked there. That shape restriction is what makes mark-on-free
// decidable (spec §1).
type TypePtr struct {
	Target Type
}

func (p TypePtr) Equiv(other Type) bool {
	o, ok := other.(TypePtr)
	return ok && p.Target.Equiv(o.Target)
}
func (p TypePtr) PointsTo() Type            { return p.Target }
func (p TypePtr) Resolve(*Env[Type]) Type   { return p }
func (p TypePtr) String() string            { return "ptr to " + p.Target.String() }

// TypeNamed is a reference to a type declared elsewhere by name.
// Equivalence compares names only (nominal typing, spec §9); the
// underlying type is reached through Resolve.
type TypeNamed struct {
	Name string
}

func (n TypeNamed) Equiv(other Type) bool {
	o, ok := other.(TypeNamed)
	return ok && n.Name == o.Name
}
func (n TypeNamed) PointsTo() Type { return nil }
func (n TypeNamed) Resolve(types *Env[Type]) Type {
	if t, ok := types.Lookup(n.Name); ok {
		return t
	}
	return n
}
func (n TypeNamed) String() string { return n.Name }

// Decl is a (type, name) pair: a struct member or a var declaration's
// payload.
type Decl struct {
	Type Type
	Name string
}
