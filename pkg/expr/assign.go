package expr

import (
	"fmt"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/reactive"
)

// Assign writes value to the location named by path, which must be an
// identifier or a member expression such as form.user.name or rows[0].
// The parent object is resolved by evaluating the path's prefix; the last
// segment is then set on it. A reactive box at the target is assigned
// rather than replaced.
func (e *Engine) Assign(path string, ctx Context, value any) error {
	node, err := e.Parse(path)
	if err != nil {
		return err
	}

	switch n := node.(type) {
	case *Identifier:
		if ctx == nil {
			return bindingError(path, fmt.Errorf("no context to assign %q into", n.Name))
		}
		if ref, ok := ctx[n.Name].(reactive.Ref); ok {
			if err := ref.Assign(value); err != nil {
				return bindingError(path, err)
			}
			return nil
		}
		ctx[n.Name] = value
		return nil
	case *MemberExpression:
		parent := e.eval(n.Object, ctx)
		if parent == nil {
			return bindingError(path, fmt.Errorf("%s is undefined", n.Object.String()))
		}
		if err := SetMember(parent, e.memberKey(n, ctx), value); err != nil {
			return bindingError(path, err)
		}
		return nil
	}
	return bindingError(path, fmt.Errorf("%s is not an assignable path", node.String()))
}

func bindingError(path string, err error) *errors.Error {
	return errors.New("E110").WithSource(path).Wrap(err)
}
