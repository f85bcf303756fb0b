// Package object defines the runtime value model for the Flux programming language.
//
// This package implements the tagged-union runtime value representation
// produced by bytecode execution: primitives (integers, floats, booleans,
// strings), the option/either family (None/Some/Left/Right), contiguous
// arrays, persistent cons lists, a persistent HAMT-style hash map, compiled
// functions, closures, and built-ins.
//
// Every concrete type implements [Object]. Dispatch is by Go type switch,
// never reflection; there is no inheritance between variants.
package object

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/flux-lang/flux/code"
	"github.com/flux-lang/flux/token"
)

//nolint:revive
const (
	INTEGER_OBJ           = "INTEGER"
	FLOAT_OBJ             = "FLOAT"
	BOOLEAN_OBJ           = "BOOLEAN"
	STRING_OBJ            = "STRING"
	NONE_OBJ              = "NONE"
	SOME_OBJ              = "SOME"
	LEFT_OBJ              = "LEFT"
	RIGHT_OBJ             = "RIGHT"
	RETURN_VALUE_OBJ      = "RETURN_VALUE"
	ERROR_OBJ             = "ERROR"
	BUILTIN_OBJ           = "BUILTIN"
	ARRAY_OBJ             = "ARRAY"
	EMPTY_LIST_OBJ        = "EMPTY_LIST"
	CONS_OBJ              = "CONS"
	HASH_OBJ              = "HASH"
	TUPLE_OBJ             = "TUPLE"
	COMPILED_FUNCTION_OBJ = "COMPILED_FUNCTION_OBJ"
	CLOSURE_OBJ           = "CLOSURE"
)

// Type represents the type of object.
type Type string

// Object is the interface that wraps the basic operations of all Flux objects.
// All runtime values implement this interface.
type Object interface {
	// Type returns the type of the object as a value of Type.
	Type() Type

	// Inspect returns a string representation of the object.
	Inspect() string
}

// Integer represents a Flux 64-bit signed integer value.
type Integer struct {
	Value int64
}

func (i *Integer) Type() Type      { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

// Float represents a Flux 64-bit floating point value.
type Float struct {
	Value float64
}

func (f *Float) Type() Type      { return FLOAT_OBJ }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// Boolean represents a Flux boolean value.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() Type      { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// String represents a Flux immutable string value. Equal strings may share
// storage; the hash key is computed lazily and cached.
type String struct {
	Value string
	// Cache for the hash key to avoid recalculating it
	hashKey *HashKey
}

func (s *String) Type() Type      { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

// None represents the absence of a value, the zero-arm of the option type.
type None struct{}

func (n *None) Type() Type      { return NONE_OBJ }
func (n *None) Inspect() string { return "None" }

// Some wraps a present optional value.
type Some struct {
	Value Object
}

func (s *Some) Type() Type      { return SOME_OBJ }
func (s *Some) Inspect() string { return "Some(" + s.Value.Inspect() + ")" }

// Left represents the left arm of an either value, conventionally the error/failure case.
type Left struct {
	Value Object
}

func (l *Left) Type() Type      { return LEFT_OBJ }
func (l *Left) Inspect() string { return "Left(" + l.Value.Inspect() + ")" }

// Right represents the right arm of an either value, conventionally the success case.
type Right struct {
	Value Object
}

func (r *Right) Type() Type      { return RIGHT_OBJ }
func (r *Right) Inspect() string { return "Right(" + r.Value.Inspect() + ")" }

// ReturnValue wraps a value being propagated out of a function body.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() Type      { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

// Error represents a Flux runtime error value, returned by built-ins to
// report a failure. The VM turns an *Error result of a built-in call into a
// runtime error that stops execution.
type Error struct {
	Message string
}

func (e *Error) Type() Type      { return ERROR_OBJ }
func (e *Error) Inspect() string { return "ERROR: " + e.Message }

// BuiltinFunction is the Go signature backing a native Flux function:
// it receives the already-evaluated argument vector and returns either
// a value or an *Error.
type BuiltinFunction func(args ...Object) Object

// Builtin represents a Flux builtin function, addressed by index via OpGetBuiltin.
type Builtin struct {
	Fn BuiltinFunction
}

func (b *Builtin) Type() Type      { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "builtin function" }

// Array represents a Flux contiguous array, shared by reference.
type Array struct {
	Elements []Object
}

func (a *Array) Type() Type { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = e.Inspect()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// EmptyListValue is the single shared instance of the empty list, returned
// by every `[]` expression and by OpEmptyList.
var EmptyListValue = &EmptyList{}

// EmptyList represents the empty persistent cons list.
type EmptyList struct{}

func (e *EmptyList) Type() Type      { return EMPTY_LIST_OBJ }
func (e *EmptyList) Inspect() string { return "[]" }

// Cons is a persistent, structurally-shared list cell: a head value and a
// tail that is itself either *Cons or *EmptyList. Because neither field is
// ever mutated after construction, a Cons cell can be shared across many
// logical lists without synchronization or copying.
type Cons struct {
	Head Object
	Tail Object
}

func (c *Cons) Type() Type { return CONS_OBJ }
func (c *Cons) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	out.WriteString(c.Head.Inspect())
	tail := c.Tail
	for {
		switch t := tail.(type) {
		case *Cons:
			out.WriteString(", ")
			out.WriteString(t.Head.Inspect())
			tail = t.Tail
		default:
			out.WriteString("]")
			return out.String()
		}
	}
}

// HashKey represents a hash key for use in the Hash map and as a dedup key
// for hashable values (Integer, Float, Boolean, String).
type HashKey struct {
	Type  Type
	Value uint64
}

func (b *Boolean) HashKey() HashKey {
	var value uint64
	if b.Value {
		value = 1
	}
	return HashKey{Type: b.Type(), Value: value}
}

func (i *Integer) HashKey() HashKey {
	//nolint:gosec
	return HashKey{Type: i.Type(), Value: uint64(i.Value)}
}

func (f *Float) HashKey() HashKey {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatFloat(f.Value, 'g', -1, 64)))
	return HashKey{Type: f.Type(), Value: h.Sum64()}
}

func (s *String) HashKey() HashKey {
	if s.hashKey != nil {
		return *s.hashKey
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Value))
	hashKey := HashKey{Type: s.Type(), Value: h.Sum64()}
	s.hashKey = &hashKey
	return hashKey
}

// Hashable represents an object that can be used as a Hash map key.
type Hashable interface {
	HashKey() HashKey
}

// HashPair represents a key-value pair stored in a Hash.
type HashPair struct {
	Key   Object
	Value Object
}

// hashKeyHasher adapts HashKey to benbjohnson/immutable's Hasher contract so
// that Hash can be backed by a persistent hash-array-mapped trie instead of
// a mutable Go map, giving functional updates structural sharing (spec 9,
// "Persistent collections").
type hashKeyHasher struct{}

func (hashKeyHasher) Hash(key HashKey) uint32 {
	//nolint:gosec
	return uint32(key.Value) ^ uint32(key.Value>>32)
}

func (hashKeyHasher) Equal(a, b HashKey) bool {
	return a == b
}

// Hash represents a Flux persistent hash map, keyed by the hashable subset
// of values (Integer, Float, Boolean, String). Every mutating operation
// returns a new Hash that shares the bulk of the prior trie's storage with
// the original.
type Hash struct {
	tree *immutable.Map[HashKey, HashPair]
}

// NewHash returns an empty persistent hash map.
func NewHash() *Hash {
	return &Hash{tree: immutable.NewMap[HashKey, HashPair](hashKeyHasher{})}
}

func (h *Hash) Type() Type { return HASH_OBJ }

func (h *Hash) Inspect() string {
	var out strings.Builder
	out.WriteString("{")
	first := true
	it := h.tree.Iterator()
	for !it.Done() {
		_, pair := it.Next()
		if !first {
			out.WriteString(", ")
		}
		first = false
		out.WriteString(fmt.Sprintf("%s: %s", pair.Key.Inspect(), pair.Value.Inspect()))
	}
	out.WriteString("}")
	return out.String()
}

// Len returns the number of entries in the map.
func (h *Hash) Len() int { return h.tree.Len() }

// Get looks up key in the map.
func (h *Hash) Get(key HashKey) (HashPair, bool) {
	return h.tree.Get(key)
}

// Set returns a new Hash with key bound to pair, sharing structure with h.
func (h *Hash) Set(key HashKey, pair HashPair) *Hash {
	return &Hash{tree: h.tree.Set(key, pair)}
}

// Delete returns a new Hash with key removed, sharing structure with h.
func (h *Hash) Delete(key HashKey) *Hash {
	return &Hash{tree: h.tree.Delete(key)}
}

// Iterate calls fn for every pair in the map in trie order.
func (h *Hash) Iterate(fn func(pair HashPair)) {
	it := h.tree.Iterator()
	for !it.Done() {
		_, pair := it.Next()
		fn(pair)
	}
}

// Tuple is a fixed-length heterogeneous value, reserved for future surface
// syntax (spec 3, "Tuple ... reserved"); the VM and compiler construct it
// nowhere yet, but built-ins and the object model carry the type so future
// opcodes do not require a runtime-model migration.
type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() Type { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	elements := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elements[i] = e.Inspect()
	}
	return "(" + strings.Join(elements, ", ") + ")"
}

// CompiledFunction represents a compiled piece of bytecode with its instructions, local variables, and parameters.
type CompiledFunction struct {
	// Instructions is the bytecode sequence of the compiled function body.
	Instructions code.Instructions

	// NumLocals indicates the number of local variable slots used within the compiled function.
	NumLocals int

	// NumParameters specifies the number of parameters accepted by the compiled function.
	NumParameters int

	// Name is the function's declared or let-bound name, empty for anonymous literals.
	// Used only for diagnostics; resolved recursion uses OpCurrentClosure, not Name.
	Name string

	// Positions maps an instruction offset within Instructions to the
	// source span it was compiled from, for VM tracing and runtime errors.
	Positions map[int]token.Span
}

func (c *CompiledFunction) Type() Type { return COMPILED_FUNCTION_OBJ }
func (c *CompiledFunction) Inspect() string {
	return fmt.Sprintf("CompiledFunction[%p]", c)
}

// Closure represents a function and its free variables in a virtual machine's execution context.
type Closure struct {
	// Fn is a reference to the compiled function containing the bytecode and metadata for closure execution.
	Fn *CompiledFunction

	// Free holds the objects representing free variables captured by the closure for use during its execution.
	Free []Object
}

func (c *Closure) Type() Type      { return CLOSURE_OBJ }
func (c *Closure) Inspect() string { return fmt.Sprintf("Closure[%p]", c) }
