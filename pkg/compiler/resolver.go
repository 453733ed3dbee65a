package compiler

import (
	"fmt"
	"path/filepath"

	"go.starlark.net/starlark"
)

// maxImportDepth bounds vars() nesting. The reference behavior lets a
// self-importing fragment recurse until the interpreter's call-depth limit;
// here the resolver re-enters the host, so the bound lives host-side and
// exceeding it surfaces as a runtime error the same way.
const maxImportDepth = 64

// resolveVars implements the vars(<name>) builtin registered in every
// Scope. It resolves <name> to <vars_dir>/<name>.conf, evaluates that
// fragment in a brand-new isolated Scope, and hands the resulting binding
// table back to the calling script as an ordinary dict. No merging and no
// caching happen here: two imports of the same name each re-evaluate the
// fragment from scratch.
func (l *Loader) resolveVars(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 1 || len(kwargs) != 0 {
		return nil, fmt.Errorf("'%s' takes exactly one argument", b.Name())
	}
	name, ok := starlark.AsString(args[0])
	if !ok {
		return nil, fmt.Errorf("'%s' takes exactly one argument", b.Name())
	}

	if l.depth >= maxImportDepth {
		return nil, fmt.Errorf("'%s': import depth limit (%d) exceeded resolving %q", b.Name(), maxImportDepth, name)
	}
	l.depth++
	defer func() { l.depth-- }()

	path := filepath.Join(l.varsDir, name+ScriptExt)
	l.logger.WithFragment(name).Debug("importing fragment")

	bindings, err := l.loadFile(path, nil)
	if err != nil {
		return nil, err
	}
	return bindingsToDict(bindings)
}

// bindingsToDict exposes a binding table to script code as a dict value.
func bindingsToDict(bindings starlark.StringDict) (*starlark.Dict, error) {
	dict := starlark.NewDict(len(bindings))
	for k, v := range bindings {
		if err := dict.SetKey(starlark.String(k), v); err != nil {
			return nil, err
		}
	}
	return dict, nil
}
