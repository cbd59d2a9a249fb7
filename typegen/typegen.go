// Package typegen runs the Convex to Rust pipeline: read the schema and
// function files, parse them, interpret them into the type model, render
// Rust and write the result.
//
// Every file is read before any is interpreted, and the output file is
// written once at the end, so a failure anywhere leaves it untouched.
package typegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/teranos/convex-typegen/config"
	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/convex"
	"github.com/teranos/convex-typegen/typegen/rust"
	"github.com/teranos/convex-typegen/version"
)

// source is one input file after reading.
type source struct {
	// path as configured, used in messages
	path string
	// canonical absolute path
	abs string
	src []byte
}

// Generate renders the configured Convex sources and writes the Rust file.
func Generate(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	res, err := Render(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := WriteFileAtomic(cfg.OutFile, res.Output); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	logger.Named("typegen").Infow("Convex types generated in "+formatMillis(res.Elapsed),
		"out", cfg.OutFile,
		"tables", res.Tables,
		"functions", res.Functions,
		"bytes", len(res.Output),
	)
	return res, nil
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// Render runs the pipeline up to and including rendering, without writing
// the output file.
func Render(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	log := logger.Named("typegen")

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := version.Check(cfg.RequiredVersion); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schemaSrc, fnSrcs, err := readSources(cfg)
	if err != nil {
		return nil, err
	}

	parser, err := NewParser(cfg.Parser)
	if err != nil {
		return nil, err
	}

	schemaFile, err := parse(parser, schemaSrc)
	if err != nil {
		return nil, err
	}
	fnFiles := make([]*syntax.File, 0, len(fnSrcs))
	for _, s := range fnSrcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := parse(parser, s)
		if err != nil {
			return nil, err
		}
		fnFiles = append(fnFiles, f)
	}

	dump := newDumper(cfg.DebugDir, cfg.DebugFormat)
	if err := dump.syntax(schemaFile, fnFiles); err != nil {
		return nil, err
	}

	schema, err := convex.BuildSchema(schemaFile, convex.SchemaOptions{
		SystemFields: cfg.Schema.SystemFields,
		Namespace:    cfg.Schema.ValidatorNamespace,
		Logger:       log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build schema")
	}

	fns, err := convex.ExtractFunctions(fnFiles, convex.FunctionOptions{
		Builders:  cfg.Functions.Builders,
		Namespace: cfg.Schema.ValidatorNamespace,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	convex.ResolveFunctionIds(schema, fns, log)

	if err := dump.models(schema, fns); err != nil {
		return nil, err
	}

	gen := rust.NewGenerator(rust.Options{Source: filepath.ToSlash(cfg.SchemaPath)})
	out, err := gen.Generate(schema, fns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render Rust types")
	}

	res := &Result{
		Output:     out,
		OutFile:    cfg.OutFile,
		SchemaPath: schemaSrc.abs,
		Tables:     len(schema.Tables),
		Functions:  len(fns),
		Unresolved: schema.Unresolved,
		Elapsed:    time.Since(start),
	}
	for _, s := range fnSrcs {
		res.FunctionPaths = append(res.FunctionPaths, s.abs)
	}
	log.Debugw("Rendered Convex types",
		"schema", schemaSrc.abs,
		"tables", schema.TableNames(),
		"functions", res.Functions,
		"unresolved", res.Unresolved,
	)
	return res, nil
}

// readSources reads the schema and then every function file.
func readSources(cfg *config.Config) (source, []source, error) {
	if _, err := os.Stat(cfg.SchemaPath); err != nil {
		if os.IsNotExist(err) {
			return source{}, nil, errors.WithHintf(
				errors.Wrap(errors.ErrMissingSchemaFile, cfg.SchemaPath),
				"set schema_path in %s or pass --schema", config.ConfigFileName)
		}
		return source{}, nil, errors.NewIOError(cfg.SchemaPath, err)
	}

	schema, err := readSource(cfg.SchemaPath)
	if err != nil {
		return source{}, nil, err
	}

	fns := make([]source, 0, len(cfg.FunctionPaths))
	for _, p := range cfg.FunctionPaths {
		s, err := readSource(p)
		if err != nil {
			return source{}, nil, err
		}
		fns = append(fns, s)
	}
	return schema, fns, nil
}

func readSource(path string) (source, error) {
	abs, err := canonicalize(path)
	if err != nil {
		return source{}, errors.NewIOError(path, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return source{}, errors.NewIOError(path, err)
	}
	return source{path: path, abs: abs, src: src}, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// NewParser returns the built-in parser, or the external command parser
// when one is configured.
func NewParser(cfg config.ParserConfig) (syntax.Parser, error) {
	if cfg.Command == "" {
		return syntax.NewBuiltin(), nil
	}
	cmd, err := syntax.NewCommand(cfg.Command)
	if err != nil {
		return nil, errors.Wrap(err, "invalid parser.command")
	}
	return cmd, nil
}

// parse runs p over s, reporting the first diagnostic as a SyntaxError.
func parse(p syntax.Parser, s source) (*syntax.File, error) {
	f, err := p.Parse(s.path, s.src, syntax.SourceKindFromPath(s.path))
	if err == nil {
		return f, nil
	}
	var diags syntax.SyntaxErrors
	if errors.As(err, &diags) && len(diags) > 0 {
		first := diags.First()
		serr := errors.NewSyntaxError(s.path, first.Pos.Line, first.Pos.Column, first.Message)
		if len(diags) > 1 {
			serr = errors.WithDetailf(serr, "%d more syntax errors in this file", len(diags)-1)
		}
		return nil, serr
	}
	return nil, errors.Wrapf(err, "failed to parse %s", s.path)
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return errors.NewIOError(path, err)
	}
	if err := renameio.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return errors.NewIOError(path, err)
	}
	return nil
}
