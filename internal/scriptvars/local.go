package scriptvars

import (
	"strings"
	"unicode/utf16"
)

// DefaultLocalVarPrefix marks character-local custom variables in saved scripts.
const DefaultLocalVarPrefix = "."

// LocalVarRule decides whether a custom variable name is scoped to a single
// script instance (character-local) rather than the whole game session.
type LocalVarRule func(name string) bool

// PrefixRule returns a rule matching names that start with prefix.
// An empty prefix matches nothing.
func PrefixRule(prefix string) LocalVarRule {
	return func(name string) bool {
		return prefix != "" && strings.HasPrefix(name, prefix) && len(name) > len(prefix)
	}
}

var localVarRule = PrefixRule(DefaultLocalVarPrefix)

// SetLocalVarRule replaces the naming rule. Call during initialization only;
// nil restores the default.
func SetLocalVarRule(rule LocalVarRule) {
	if rule == nil {
		rule = PrefixRule(DefaultLocalVarPrefix)
	}
	localVarRule = rule
}

// IsCharacterLocalVar reports whether name follows the character-local naming convention.
func IsCharacterLocalVar(name string) bool {
	return localVarRule(name)
}

// IsCharacterLocalVarW is IsCharacterLocalVar for UTF-16 names.
func IsCharacterLocalVarW(name []uint16) bool {
	return localVarRule(string(utf16.Decode(name)))
}
