package schema

import "testing"

func TestScopeOwner(t *testing.T) {
	global := Context{"name": "Ann", "item": "shadowed"}
	loop := Context{"item": "a", "index": 0}
	slot := Context{"row": 1}
	s := NewScope(global).With(Context{}).With(loop).With(slot)

	tests := []struct {
		name string
		want Context
	}{
		{"row", slot},
		{"item", loop},
		{"index", loop},
		{"name", global},
		{"undeclared", global},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := s.Owner(tt.name)
			owner[tt.name] = "written"
			if tt.want[tt.name] != "written" {
				t.Errorf("%s written to %v", tt.name, owner)
			}
		})
	}

	if NewScope(global).With(nil) == nil {
		t.Error("With(nil) should keep the scope")
	}
	var none *Scope
	if none.Owner("x") != nil {
		t.Error("nil scope should have no owner")
	}
}

func TestScopeProps(t *testing.T) {
	s := NewScope(Context{})
	props := Attrs{"class": "x"}

	scoped := WithScope(props, s)
	if ScopeOf(scoped) != s {
		t.Error("scope not stored")
	}
	if ScopeOf(props) != nil {
		t.Error("WithScope mutated its input")
	}
	if ScopeOf(WithScope(scoped, nil)) != nil {
		t.Error("WithScope(nil) should remove the scope")
	}

	scoped[BoundKey] = map[string]bool{"modelValue": true}
	if !Bound(scoped, "modelValue") || Bound(scoped, "class") || Bound(props, "modelValue") {
		t.Error("Bound mismatch")
	}

	cleaned := Clean(scoped)
	for _, k := range []string{ScopeKey, BoundKey} {
		if _, ok := cleaned[k]; ok {
			t.Errorf("Clean left %s", k)
		}
	}
	if cleaned["class"] != "x" {
		t.Error("Clean dropped class")
	}
}
