// Package reactive provides the reactive box used by hosts that feed
// observable state into the schema renderer.
//
// A Signal holds a value, notifies subscribers when it changes, and
// implements Ref so that the expression engine can read through it and the
// model directive can write into it without knowing its element type:
//
//	name := reactive.NewSignal("Ann")
//	ctx := schema.Context{"name": name}
//
//	// "name" evaluates to "Ann"; a v-model bound to "name" calls
//	// name.Assign(newValue) on update.
//
// Unbox is the normalization step applied to every intermediate value during
// expression evaluation. Non-reactive embeddings can substitute an identity
// function.
package reactive
