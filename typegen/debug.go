package typegen

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/teranos/convex-typegen/config"
	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
)

// Debug dump file stems
const (
	DumpSchemaAST       = "schema_ast"
	DumpFunctionsAST    = "functions_ast"
	DumpParsedSchema    = "parsed_schema"
	DumpParsedFunctions = "parsed_functions"
)

// dumper writes intermediate trees to a debug directory. The zero dir
// disables it.
type dumper struct {
	dir    string
	format string
}

func newDumper(dir, format string) *dumper {
	if format == "" {
		format = config.DebugFormatJSON
	}
	return &dumper{dir: dir, format: format}
}

func (d *dumper) enabled() bool {
	return d.dir != ""
}

func (d *dumper) syntax(schema *syntax.File, fns []*syntax.File) error {
	if !d.enabled() {
		return nil
	}
	trees := make([]any, 0, len(fns))
	for _, f := range fns {
		trees = append(trees, syntax.FileTree(f))
	}
	if err := d.write(DumpSchemaAST, syntax.FileTree(schema)); err != nil {
		return err
	}
	return d.write(DumpFunctionsAST, trees)
}

func (d *dumper) models(schema *model.Schema, fns []model.FunctionArgSet) error {
	if !d.enabled() {
		return nil
	}
	if err := d.write(DumpParsedSchema, model.SchemaTree(schema)); err != nil {
		return err
	}
	return d.write(DumpParsedFunctions, model.FunctionsTree(fns))
}

func (d *dumper) write(stem string, v any) error {
	var (
		data []byte
		err  error
	)
	path := filepath.Join(d.dir, stem+"."+d.format)
	switch d.format {
	case config.DebugFormatYAML:
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}

	if err := os.MkdirAll(d.dir, config.DefaultDirPermissions); err != nil {
		return errors.NewIOError(d.dir, err)
	}
	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return errors.NewIOError(path, err)
	}
	logger.Debugw("Wrote debug dump", "file", path)
	return nil
}
