package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Expression errors (E101-E109)
	"E101": {Category: CategoryExpression, Message: "Expression parse error"},
	"E102": {Category: CategoryExpression, Message: "Expression evaluation error"},
	"E103": {Category: CategoryExpression, Message: "Called value is not a function"},

	// Binding errors (E110-E119)
	"E110": {Category: CategoryBinding, Message: "Binding target is not writable"},
	"E111": {Category: CategoryBinding, Message: "Unsupported model binding"},

	// Directive errors (E120-E129)
	"E120": {Category: CategoryDirective, Message: "Unsupported for directive"},

	// Event errors (E130-E139)
	"E130": {Category: CategoryEvent, Message: "Event handler failed"},

	// Render errors (E140-E149)
	"E140": {Category: CategoryRender, Message: "Invalid node tag"},

	// Config errors (E150-E159)
	"E150": {Category: CategoryConfig, Message: "Invalid configuration file"},
	"E151": {Category: CategoryConfig, Message: "Configuration validation failed"},

	// Source errors (E160-E169)
	"E160": {Category: CategorySource, Message: "Schema source not readable"},
	"E161": {Category: CategorySource, Message: "Schema document malformed"},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
