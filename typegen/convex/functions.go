package convex

import (
	"path/filepath"
	"strings"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
	"go.uber.org/zap"
)

// DefaultBuilders are the Convex function builders recognized out of the box.
var DefaultBuilders = []string{
	string(model.FunctionQuery),
	string(model.FunctionMutation),
	string(model.FunctionAction),
	string(model.FunctionInternalQuery),
	string(model.FunctionInternalMutation),
	string(model.FunctionInternalAction),
}

// FunctionOptions controls function extraction.
type FunctionOptions struct {
	// Builders lists the builder names that declare functions.
	Builders []string
	// Namespace is the validator identifier used when a file does not
	// import `v` from convex/values.
	Namespace string
	Logger    *zap.SugaredLogger
}

// DefaultFunctionOptions returns the options used when none are configured.
func DefaultFunctionOptions() FunctionOptions {
	return FunctionOptions{Builders: DefaultBuilders, Namespace: DefaultNamespace}
}

// ExtractFunctions collects the argument shapes of exported Convex
// functions, file by file in the given order. The first malformed file
// fails the whole extraction.
func ExtractFunctions(files []*syntax.File, opts FunctionOptions) ([]model.FunctionArgSet, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Named("typegen.functions")
	}
	builders := opts.Builders
	if len(builders) == 0 {
		builders = DefaultBuilders
	}

	var out []model.FunctionArgSet
	for _, f := range files {
		fns, err := extractFile(f, builders, opts.Namespace)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract functions from %s", f.Path)
		}
		log.Debugw("Functions extracted", "file", f.Path, "count", len(fns))
		out = append(out, fns...)
	}
	return out, nil
}

// ModuleName returns the Convex module name for a source path: its file
// stem.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractFile(f *syntax.File, builders []string, namespace string) ([]model.FunctionArgSet, error) {
	kinds := builderKinds(f, builders)
	interp := InterpreterFor(f, namespace)
	module := ModuleName(f.Path)

	var out []model.FunctionArgSet
	for _, exp := range syntax.Exports(f) {
		call, ok := exp.Init.(*syntax.Call)
		if !ok {
			continue
		}
		kind, ok := builderKind(call, kinds)
		if !ok || len(call.Args) == 0 {
			continue
		}
		cfg, ok := interp.objectLiteral(call.Args[0])
		if !ok {
			// function form: query(async (ctx) => ...) declares no args
			continue
		}
		argsNode := property(cfg, "args")
		if argsNode == nil {
			continue
		}

		args, err := interpretArgs(interp, argsNode)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", exp.Name)
		}
		out = append(out, model.FunctionArgSet{
			Module:       module,
			FunctionName: exp.Name,
			Kind:         kind,
			ArgsType:     args,
		})
	}
	return out, nil
}

// builderKinds maps every local name that refers to a builder to its kind,
// following aliased imports (import { query as q }).
func builderKinds(f *syntax.File, builders []string) map[string]model.FunctionKind {
	kinds := make(map[string]model.FunctionKind, len(builders))
	known := make(map[string]bool, len(builders))
	for _, b := range builders {
		kinds[b] = model.FunctionKind(b)
		known[b] = true
	}
	for _, stmt := range f.Body {
		imp, ok := stmt.(*syntax.ImportDecl)
		if !ok {
			continue
		}
		for _, spec := range imp.Specifiers {
			if known[spec.Imported] {
				kinds[spec.Local] = model.FunctionKind(spec.Imported)
			}
		}
	}
	return kinds
}

// builderKind identifies the builder a call invokes. Namespaced calls such
// as server.query match on their last segment.
func builderKind(call *syntax.Call, kinds map[string]model.FunctionKind) (model.FunctionKind, bool) {
	path := syntax.CalleeName(call)
	if path == "" {
		return "", false
	}
	if kind, ok := kinds[path]; ok {
		return kind, true
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		kind, ok := kinds[path[i+1:]]
		return kind, ok
	}
	return "", false
}

func property(obj *syntax.ObjectLit, key string) syntax.Node {
	for _, p := range obj.Properties {
		if !p.Spread && !p.Computed && p.Key == key {
			return p.Value
		}
	}
	return nil
}

// interpretArgs accepts a bare object, v.object(...), or v.optional of either.
func interpretArgs(interp *Interpreter, node syntax.Node) (model.TypeNode, error) {
	t, err := interp.Interpret(node)
	if err != nil {
		return nil, err
	}
	switch a := t.(type) {
	case model.Object:
		return a, nil
	case model.Optional:
		if _, ok := a.Inner.(model.Object); ok {
			return a, nil
		}
	}
	return nil, unrecognized(node.Pos(), "args", "args must be an object validator, got "+model.Describe(t))
}
