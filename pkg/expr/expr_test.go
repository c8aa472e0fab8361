package expr

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/reactive"
)

type user struct {
	Name    string
	Email   string `json:"email"`
	Friends []string
}

func (u *user) Greet(greeting string) string {
	return greeting + ", " + u.Name
}

func newTestEngine() (*Engine, *errors.Collector) {
	c := &errors.Collector{}
	return New(WithReporter(c)), c
}

func TestEvalLiteralsAndOperators(t *testing.T) {
	e, _ := newTestEngine()
	tests := []struct {
		src  string
		want any
	}{
		{"1 + 2 * 3", 7.0},
		{"(1 + 2) * 3", 9.0},
		{"10 / 4", 2.5},
		{"7 % 3", 1.0},
		{"-5 + +'2'", -3.0},
		{"'a' + 1", "a1"},
		{"1 + '1'", "11"},
		{"'ab' + 'cd'", "abcd"},
		{"!true", false},
		{"!!''", false},
		{"1 == '1'", true},
		{"1 === '1'", false},
		{"1 !== 2", true},
		{"null == undefined", true},
		{"null === undefined", true},
		{"0 == false", true},
		{"3 > 2", true},
		{"'a' < 'b'", true},
		{"2 >= 3", false},
		{"true ? 'yes' : 'no'", "yes"},
		{"false ? 1 : true ? 2 : 3", 2.0},
		{"0 || 'fallback'", "fallback"},
		{"1 && 'second'", "second"},
		{"0 && 'second'", 0.0},
		{"null ?? 'd'", "d"},
		{"0 ?? 'd'", 0.0},
		{"[1, 'two', true]", []any{1.0, "two", true}},
		{"[1, 2,]", []any{1.0, 2.0}},
		{"'\\u0041b'", "Ab"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := e.Eval(tt.src, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvalMemberAccess(t *testing.T) {
	e, c := newTestEngine()
	u := &user{Name: "Ada", Email: "ada@example.com", Friends: []string{"Bob", "Cy"}}
	ctx := Context{
		"user":   u,
		"form":   map[string]any{"fields": map[string]any{"title": "Hello"}},
		"items":  []any{"x", "y", "z"},
		"key":    "title",
		"counts": map[string]int{"a": 3},
		"$route": map[string]any{"path": "/home"},
		"@event": "click",
	}

	tests := []struct {
		src  string
		want any
	}{
		{"user.Name", "Ada"},
		{"user.name", "Ada"},
		{"user.email", "ada@example.com"},
		{"user.Friends[1]", "Cy"},
		{"user.Friends.length", 2},
		{"form.fields.title", "Hello"},
		{"form.fields[key]", "Hello"},
		{"form['fields']['title']", "Hello"},
		{"items[0] + items[2]", "xz"},
		{"items.length", 3},
		{"counts.a", 3},
		{"'hello'.length", 5},
		{"$route.path", "/home"},
		{"@event", "click"},
		{"missing", nil},
		{"missing.deep.path", nil},
		{"form.nothing.here", nil},
		{"items[10]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := e.Eval(tt.src, ctx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
	if len(c.Errors()) != 0 {
		t.Errorf("unexpected diagnostics: %v", c.Errors())
	}
}

func TestEvalUnboxesReactiveValues(t *testing.T) {
	e, _ := newTestEngine()
	count := reactive.NewSignal(41)
	profile := reactive.NewSignal(map[string]any{"name": "Grace"})
	ctx := Context{"count": count, "profile": profile}

	if got := e.Eval("count + 1", ctx); got != 42.0 {
		t.Errorf("count + 1 = %#v, want 42", got)
	}
	if got := e.Eval("profile.name", ctx); got != "Grace" {
		t.Errorf("profile.name = %#v, want Grace", got)
	}

	raw := New(WithUnboxer(reactive.Identity))
	if got := raw.Eval("count", ctx); got != count {
		t.Errorf("identity unboxer changed value: %#v", got)
	}
	if got := raw.Eval("5", nil); got != 5.0 {
		t.Errorf("raw literal = %#v", got)
	}
}

func TestEvalCalls(t *testing.T) {
	e, c := newTestEngine()
	var seenThis any
	obj := map[string]any{"label": "obj"}
	obj["whoami"] = Method(func(this any, args ...any) (any, error) {
		seenThis = this
		return "called", nil
	})

	ctx := Context{
		"user":  &user{Name: "Ada"},
		"add":   func(a, b float64) float64 { return a + b },
		"join":  func(parts ...string) string { return fmt.Sprint(parts) },
		"upper": func(s string) (string, error) { return s + "!", nil },
		"fail":  func() (any, error) { return nil, fmt.Errorf("boom") },
		"panic": func() any { panic("kaboom") },
		"obj":   obj,
		"bare": Method(func(this any, args ...any) (any, error) {
			return this, nil
		}),
		"num": 3,
	}

	t.Run("plain function", func(t *testing.T) {
		if got := e.Eval("add(1, 2)", ctx); got != 3.0 {
			t.Errorf("add(1, 2) = %#v", got)
		}
	})
	t.Run("argument conversion", func(t *testing.T) {
		if got := e.Eval("add('1', 2)", ctx); got != 3.0 {
			t.Errorf("add('1', 2) = %#v", got)
		}
	})
	t.Run("variadic", func(t *testing.T) {
		if got := e.Eval("join('a', 'b')", ctx); got != "[a b]" {
			t.Errorf("join = %#v", got)
		}
	})
	t.Run("value and nil error", func(t *testing.T) {
		if got := e.Eval("upper('hi')", ctx); got != "hi!" {
			t.Errorf("upper = %#v", got)
		}
	})
	t.Run("go method binds receiver", func(t *testing.T) {
		if got := e.Eval("user.Greet('Hello')", ctx); got != "Hello, Ada" {
			t.Errorf("Greet = %#v", got)
		}
		if got := e.Eval("user.greet('Hi')", ctx); got != "Hi, Ada" {
			t.Errorf("greet = %#v", got)
		}
	})
	t.Run("method receives this", func(t *testing.T) {
		if got := e.Eval("obj.whoami()", ctx); got != "called" {
			t.Errorf("whoami = %#v", got)
		}
		if m, ok := seenThis.(map[string]any); !ok || m["label"] != "obj" {
			t.Errorf("this = %#v", seenThis)
		}
	})
	t.Run("bare call has no receiver", func(t *testing.T) {
		if got := e.Eval("bare()", ctx); got != nil {
			t.Errorf("this = %#v, want nil", got)
		}
	})

	c.Reset()
	t.Run("error result is reported", func(t *testing.T) {
		if got := e.Eval("fail()", ctx); got != nil {
			t.Errorf("fail() = %#v", got)
		}
	})
	t.Run("panic is recovered", func(t *testing.T) {
		if got := e.Eval("panic()", ctx); got != nil {
			t.Errorf("panic() = %#v", got)
		}
	})
	t.Run("non-function is reported", func(t *testing.T) {
		if got := e.Eval("num()", ctx); got != nil {
			t.Errorf("num() = %#v", got)
		}
		if got := e.Eval("nothing()", ctx); got != nil {
			t.Errorf("nothing() = %#v", got)
		}
	})
	t.Run("nil object short-circuits", func(t *testing.T) {
		if got := e.Eval("nothing.method()", ctx); got != nil {
			t.Errorf("nothing.method() = %#v", got)
		}
	})

	want := []string{"E102", "E102", "E103", "E103"}
	if got := c.Codes(); !reflect.DeepEqual(got, want) {
		t.Errorf("codes = %v, want %v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{"", 0},
		{"1 +", 3},
		{"a b", 2},
		{"(1", 2},
		{"'open", 0},
		{"a ? b", 5},
		{"#", 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded", tt.src)
			}
			if errors.Code(err) != "E101" {
				t.Errorf("code = %q, want E101", errors.Code(err))
			}
			if e, ok := err.(*errors.Error); !ok || e.Offset != tt.offset {
				t.Errorf("offset = %v, want %d", err, tt.offset)
			}
		})
	}
}

func TestEvalReportsParseError(t *testing.T) {
	e, c := newTestEngine()
	if got := e.Eval("1 +", nil); got != nil {
		t.Errorf("got %#v, want nil", got)
	}
	if got := c.Codes(); len(got) != 1 || got[0] != "E101" {
		t.Errorf("codes = %v", got)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"a.b[c](d, 'e')", `a.b[c](d, "e")`},
		{"!a && b || c", "(((!a) && b) || c)"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"a ?? b", "(a ?? b)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a + b", []string{"a", "b"}},
		{"user.name", []string{"user"}},
		{"items[index].label", []string{"index", "items"}},
		{"fn(x, y.z) ? a : a", []string{"a", "fn", "x", "y"}},
		{"'literal' + 1", []string{}},
		{"$store.count", []string{"$store"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got := ExtractVariables(node); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFor(t *testing.T) {
	tests := []struct {
		src       string
		item      string
		index     string
		list      string
		wantError bool
	}{
		{src: "item in items", item: "item", index: "index", list: "items"},
		{src: "(row, i) in table.rows", item: "row", index: "i", list: "table.rows"},
		{src: "(row) in rows", item: "row", index: "index", list: "rows"},
		{src: "x of [1, 2]", item: "x", index: "index", list: "[1, 2]"},
		{src: "  (a , b)  in  list  ", item: "a", index: "b", list: "list"},
		{src: "items", wantError: true},
		{src: "1x in items", wantError: true},
		{src: "item in", wantError: true},
		{src: "item in 1 +", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			clause, err := ParseFor(tt.src)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ParseFor(%q) succeeded", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if clause.ItemName != tt.item || clause.IndexName != tt.index || clause.List.String() != tt.list {
				t.Errorf("got (%s, %s) in %s", clause.ItemName, clause.IndexName, clause.List.String())
			}
		})
	}
}

func TestResolveFor(t *testing.T) {
	e, _ := newTestEngine()
	ctx := Context{
		"names": []string{"a", "b"},
		"count": 5,
		"list":  reactive.NewSignal([]any{1, 2, 3}),
	}

	res, err := e.ResolveFor("n in names", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Items, []any{"a", "b"}) {
		t.Errorf("items = %#v", res.Items)
	}

	res, _ = e.ResolveFor("n in count", ctx)
	if len(res.Items) != 0 || res.Items == nil {
		t.Errorf("non-array should resolve to empty list, got %#v", res.Items)
	}

	res, _ = e.ResolveFor("n in list", ctx)
	if len(res.Items) != 3 {
		t.Errorf("reactive list items = %#v", res.Items)
	}
}

func TestAssign(t *testing.T) {
	e, _ := newTestEngine()
	u := &user{Name: "Ada"}
	count := reactive.NewSignal(1)
	form := map[string]any{"title": "old", "tags": []any{"a", "b"}}
	ctx := Context{"form": form, "user": u, "count": count, "n": 1}

	tests := []struct {
		path  string
		value any
		check func() any
		want  any
	}{
		{"form.title", "new", func() any { return form["title"] }, "new"},
		{"form['title']", "newer", func() any { return form["title"] }, "newer"},
		{"form.tags[1]", "z", func() any { return form["tags"].([]any)[1] }, "z"},
		{"user.name", "Grace", func() any { return u.Name }, "Grace"},
		{"count", 2.0, func() any { return count.Get() }, 2},
		{"n", 5, func() any { return ctx["n"] }, 5},
		{"fresh", true, func() any { return ctx["fresh"] }, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if err := e.Assign(tt.path, ctx, tt.value); err != nil {
				t.Fatal(err)
			}
			if got := tt.check(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("after assign = %#v, want %#v", got, tt.want)
			}
		})
	}

	for _, path := range []string{"missing.field", "a + b", "1 +"} {
		t.Run("error "+path, func(t *testing.T) {
			if err := e.Assign(path, ctx, 1); err == nil {
				t.Errorf("Assign(%q) succeeded", path)
			}
		})
	}
}

func TestValueConversions(t *testing.T) {
	if !math.IsNaN(ToNumber(nil)) {
		t.Error("ToNumber(nil) should be NaN")
	}
	if ToNumber(" 12 ") != 12 {
		t.Error("ToNumber should trim strings")
	}
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{3.0, "3"},
		{2.5, "2.5"},
		{int64(7), "7"},
		{math.Inf(1), "Infinity"},
		{[]any{1.0, "a"}, "1,a"},
		{map[string]any{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		if got := ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	for _, v := range []any{nil, false, 0, 0.0, "", math.NaN(), (*user)(nil)} {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true", v)
		}
	}
	for _, v := range []any{true, 1, "0", []any{}, map[string]any{}} {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false", v)
		}
	}
}

type greeter struct{ name string }

func (g *greeter) String() string { return "hello " + g.name }

type loud struct{}

func (loud) String() string { panic("too loud") }

type box struct{ V any }

// opaque is a node type the evaluator does not know.
type opaque struct{}

func (opaque) Pos() int       { return 0 }
func (opaque) String() string { return "opaque" }
func (opaque) exprNode()      {}

func TestEvalHostValuesDoNotPanic(t *testing.T) {
	c := &errors.Collector{}
	e := New(WithReporter(c))
	ctx := Context{
		"u":     (*greeter)(nil),
		"g":     &greeter{name: "Ann"},
		"loud":  loud{},
		"a":     box{[]int{1}},
		"b":     box{[]int{1}},
		"p":     box{1},
		"q":     box{1},
		"mixed": box{"x"},
	}

	tests := []struct {
		src  string
		want any
	}{
		{"'hi ' + u", "hi "},
		{"'' + g", "hello Ann"},
		{"a === b", false},
		{"a == b", false},
		{"a === mixed", false},
		{"p === q", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := e.Eval(tt.src, ctx); got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
	if len(c.Errors()) != 0 {
		t.Errorf("unexpected diagnostics: %v", c.Errors())
	}

	t.Run("panic is reported", func(t *testing.T) {
		c.Reset()
		if got := e.Eval("'x' + loud", ctx); got != nil {
			t.Errorf("got %#v, want nil", got)
		}
		if got := c.Codes(); !reflect.DeepEqual(got, []string{"E102"}) {
			t.Errorf("codes = %v, want [E102]", got)
		}
	})
}

func TestEvaluateUnsupportedNode(t *testing.T) {
	c := &errors.Collector{}
	e := New(WithReporter(c))
	if got := e.Evaluate(opaque{}, Context{}); got != nil {
		t.Errorf("got %#v, want nil", got)
	}
	if got := c.Codes(); !reflect.DeepEqual(got, []string{"E102"}) {
		t.Errorf("codes = %v, want [E102]", got)
	}
}

func TestParseCacheIsBounded(t *testing.T) {
	e := New()
	for i := 0; i < maxCached+10; i++ {
		if _, err := e.Parse(fmt.Sprintf("x + %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	e.cache.Range(func(any, any) bool { n++; return true })
	if n == 0 || n > maxCached {
		t.Errorf("cache holds %d entries, want 1..%d", n, maxCached)
	}

	node, err := e.Parse("x + 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Evaluate(node, Context{"x": 1}); got != 2.0 {
		t.Errorf("x + 1 = %#v", got)
	}
}
