package directive

import "strings"

// Modifiers are the dot-suffixed flags of a directive key, as in
// "@submit.prevent" or "v-model.trim.number".
type Modifiers struct {
	// Event modifiers
	Prevent bool // call PreventDefault before the handler
	Stop    bool // call StopPropagation before the handler
	Self    bool // only fire when the event originated on this element
	Once    bool // fire at most once

	// Model modifiers
	Trim   bool // trim string values
	Number bool // convert numeric strings to numbers
	Lazy   bool // sync on change instead of input

	// Other holds unrecognized modifiers, in order.
	Other []string

	names []string
}

// ParseModifiers parses modifier names.
func ParseModifiers(names []string) Modifiers {
	m := Modifiers{names: names}
	for _, name := range names {
		switch name {
		case "prevent":
			m.Prevent = true
		case "stop":
			m.Stop = true
		case "self":
			m.Self = true
		case "once":
			m.Once = true
		case "trim":
			m.Trim = true
		case "number":
			m.Number = true
		case "lazy":
			m.Lazy = true
		default:
			m.Other = append(m.Other, name)
		}
	}
	return m
}

// Empty reports whether no modifiers were given.
func (m Modifiers) Empty() bool { return len(m.names) == 0 }

// Map returns the modifiers as a set, the shape components receive in
// their modelModifiers prop.
func (m Modifiers) Map() map[string]any {
	out := make(map[string]any, len(m.names))
	for _, name := range m.names {
		out[name] = true
	}
	return out
}

// splitKey splits "name.mod1.mod2" into its name and modifier list.
func splitKey(s string) (string, []string) {
	parts := strings.Split(s, ".")
	var mods []string
	for _, p := range parts[1:] {
		if p != "" {
			mods = append(mods, p)
		}
	}
	return parts[0], mods
}
