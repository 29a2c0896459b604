// Package transition builds the call payloads of the DID contracts'
// transitions: typed parameter lists, nested ADT values and the transaction
// data object.
//
// Contract-defined type and constructor names are scoped by the contract
// address as the plain string "<address lowercased>.<Name>", for example
// "0xabc...def.Remove". ScopedName is the only place that formats them.
package transition

import (
	"encoding/json"
	"strings"
)

// Value is an ADT value as the contract runtime encodes it.
// Arguments hold strings, nested Values or lists of either.
type Value struct {
	Constructor string   `json:"constructor"`
	ArgTypes    []string `json:"argtypes"`
	Arguments   []any    `json:"arguments"`
}

// NewValue returns a Value with no type arguments.
func NewValue(constructor string, args ...any) Value {
	if args == nil {
		args = []any{}
	}
	return Value{
		Constructor: constructor,
		ArgTypes:    []string{},
		Arguments:   args,
	}
}

// MarshalJSON always emits argtypes and arguments as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	type plain Value
	p := plain(v)
	if p.ArgTypes == nil {
		p.ArgTypes = []string{}
	}
	if p.Arguments == nil {
		p.Arguments = []any{}
	}
	return json.Marshal(p)
}

// Arg returns the i-th argument as a nested Value.
func (v Value) Arg(i int) (Value, bool) {
	if i < 0 || i >= len(v.Arguments) {
		return Value{}, false
	}
	nested, ok := v.Arguments[i].(Value)
	return nested, ok
}

// StringArg returns the i-th argument as a string.
func (v Value) StringArg(i int) (string, bool) {
	if i < 0 || i >= len(v.Arguments) {
		return "", false
	}
	s, ok := v.Arguments[i].(string)
	return s, ok
}

// ScopedName formats a contract-defined name for the contract at addr.
func ScopedName(addr, name string) string {
	return strings.ToLower(addr) + "." + name
}

// Some wraps value in an Option of the given type.
func Some(typ string, value any) Value {
	return Value{
		Constructor: "Some",
		ArgTypes:    []string{typ},
		Arguments:   []any{value},
	}
}

// None is the empty Option of the given type.
func None(typ string) Value {
	return Value{
		Constructor: "None",
		ArgTypes:    []string{typ},
		Arguments:   []any{},
	}
}

// Pair builds a two-element tuple.
func Pair(typA, typB string, a, b any) Value {
	return Value{
		Constructor: "Pair",
		ArgTypes:    []string{typA, typB},
		Arguments:   []any{a, b},
	}
}

// Param is one named, typed argument of a transition call.
type Param struct {
	VName string `json:"vname"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}
