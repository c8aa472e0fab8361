// Package errors provides structured diagnostics for the schema renderer.
//
// Every failure the renderer recovers from locally (a malformed expression,
// an unwritable binding target, a panicking event handler) is described by an
// *Error carrying a registered code and category, and is delivered to a
// Reporter instead of being returned to the caller.
//
// # Error Codes
//
// Codes are grouped by category:
//   - E101-E109: expression parsing and evaluation
//   - E110-E119: two-way binding resolution
//   - E120-E129: directive format
//   - E130-E139: event handlers
//   - E140-E149: render (structurally invalid nodes)
//   - E150-E159: configuration
//   - E160-E169: schema sources
//
// # Usage
//
//	err := errors.New("E101").
//	    WithSource("count >").
//	    WithDetail("unexpected end of input at offset 7")
//
//	reporter.Report(err)
//	fmt.Println(err.Format())
//	// ERROR E101: Expression parse error
//	//
//	//   count >
//	//          ^
//	//
//	//   unexpected end of input at offset 7
package errors
