package scriptvars

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/holdstate/internal/packedvars"
)

// CustomVarPrefix namespaces custom script variables inside a packed store.
const CustomVarPrefix = "var."

// Key references a script variable: a predefined identity or a custom name.
type Key struct {
	ID   Predefined // NoVar for custom variables
	Name string
}

// PredefinedKey returns a key for a built-in variable.
func PredefinedKey(id Predefined) Key {
	return Key{ID: id}
}

// CustomKey returns a key for a custom variable.
func CustomKey(name string) Key {
	return Key{Name: name}
}

// ParseKey resolves a script variable reference.
// Canonical predefined names win over custom names.
func ParseKey(name string) Key {
	if id := ParsePredefinedVar(name); id != NoVar {
		return PredefinedKey(id)
	}
	return CustomKey(name)
}

// IsPredefined reports whether k names a built-in variable.
func (k Key) IsPredefined() bool {
	return k.ID != NoVar
}

// Kind returns the fixed kind of a predefined key; custom keys return KindNone
// because their type is decided by the first write.
func (k Key) Kind() Kind {
	switch {
	case !k.IsPredefined():
		return KindNone
	case IsStringVar(k.ID):
		return KindText
	default:
		return KindInt
	}
}

func (k Key) String() string {
	if k.IsPredefined() {
		return k.ID.String()
	}
	return k.Name
}

// Vars gives typed access to custom script variables held in a packed store.
// Predefined variables are owned by the simulation and are not stored here.
type Vars struct {
	store *packedvars.Store
}

// NewVars wraps store.
func NewVars(store *packedvars.Store) *Vars {
	return &Vars{store: store}
}

func storeKey(name string) string {
	return CustomVarPrefix + name
}

// Get returns the current value of a custom variable; unset when missing or unreadable.
func (v *Vars) Get(name string) Value {
	key := storeKey(name)
	if n, ok := v.store.LookupInt(key); ok {
		return Int(n)
	}
	if s, ok := v.store.LookupText(key); ok {
		return Text(s)
	}
	return Value{}
}

// Set stores val. Setting an unset value removes the variable.
func (v *Vars) Set(name string, val Value) {
	key := storeKey(name)
	switch val.Kind() {
	case KindInt:
		v.store.SetInt(key, val.Int())
	case KindText:
		v.store.SetText(key, val.Text())
	default:
		v.store.Delete(key)
	}
}

// Unset removes a custom variable.
func (v *Vars) Unset(name string) {
	v.store.Delete(storeKey(name))
}

// Apply runs op on the named variable. A failed op leaves the variable
// unchanged; the error is logged and returned.
func (v *Vars) Apply(name string, op Op, operand Value) error {
	cur := v.Get(name)
	next, err := ApplyOp(cur, op, operand)
	if err != nil {
		slog.Warn("script var op rejected",
			"var", name,
			"op", op,
			"operand", operand,
			"current", cur,
			"error", err)
		return fmt.Errorf("var %q: %w", name, err)
	}
	v.Set(name, next)
	return nil
}

// Compare evaluates the named variable against operand.
// Errors are logged and evaluate to false.
func (v *Vars) Compare(name string, comp Comp, operand Value) bool {
	ok, err := ApplyComp(v.Get(name), comp, operand)
	if err != nil {
		slog.Warn("script var comparison rejected",
			"var", name,
			"comp", comp,
			"operand", operand,
			"error", err)
		return false
	}
	return ok
}

// Names returns the sorted names of all custom variables.
func (v *Vars) Names() []string {
	keys := v.store.Keys(CustomVarPrefix)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.TrimPrefix(k, CustomVarPrefix)
	}
	return names
}

// CopyMissing copies variables from src that are not set here.
// Returns the names that existed on both sides with different values.
func (v *Vars) CopyMissing(src *Vars) []string {
	var conflicts []string
	for _, name := range src.Names() {
		theirs := src.Get(name)
		if !theirs.IsSet() {
			continue
		}
		mine := v.Get(name)
		if !mine.IsSet() {
			v.Set(name, theirs)
			continue
		}
		if mine != theirs {
			conflicts = append(conflicts, name)
		}
	}
	return conflicts
}
