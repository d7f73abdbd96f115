package input

import "fmt"

// Bindings maps frontend key names (e.g. "W", "ShiftLeft", "Space") to
// actions.
type Bindings map[string]Action

// NewBindings builds bindings from action name to key name, the shape of
// the [bindings] config section. Unknown actions and keys bound twice are
// errors.
func NewBindings(byAction map[string]string) (Bindings, error) {
	b := make(Bindings, len(byAction))
	for name, key := range byAction {
		a, ok := ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("bindings: unknown action %q", name)
		}
		if key == "" {
			return nil, fmt.Errorf("bindings: action %q has no key", name)
		}
		if prev, dup := b[key]; dup {
			return nil, fmt.Errorf("bindings: key %q bound to both %s and %s", key, prev, a)
		}
		b[key] = a
	}
	return b, nil
}

// ParseAction looks up an action by its config name.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return Action(a), true
		}
	}
	return 0, false
}

// Lookup returns the action bound to key.
func (b Bindings) Lookup(key string) (Action, bool) {
	a, ok := b[key]
	return a, ok
}

// DefaultKeys is the stock layout.
func DefaultKeys() map[string]string {
	return map[string]string{
		"move_up":    "W",
		"move_down":  "S",
		"move_left":  "A",
		"move_right": "D",
		"run":        "ShiftLeft",
		"kick":       "Space",
		"interact":   "E",
		"drop":       "Q",
	}
}
