// Package config loads convex-typegen settings from convex-typegen.toml,
// CONVEX_TYPEGEN_* environment variables and CLI flags, in increasing
// order of precedence.
package config

// Config represents the generator configuration
type Config struct {
	SchemaPath    string   `mapstructure:"schema_path" toml:"schema_path"`       // Convex schema file (default: convex/schema.ts)
	OutFile       string   `mapstructure:"out_file" toml:"out_file"`             // Generated Rust file (default: src/convex_types.rs)
	FunctionPaths []string `mapstructure:"function_paths" toml:"function_paths"` // Convex function files for argument types

	Schema    SchemaConfig    `mapstructure:"schema" toml:"schema"`
	Functions FunctionsConfig `mapstructure:"functions" toml:"functions"`
	Parser    ParserConfig    `mapstructure:"parser" toml:"parser"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`

	DebugDir    string `mapstructure:"debug_dir" toml:"debug_dir"`       // Dump syntax trees and models here ("" = off)
	DebugFormat string `mapstructure:"debug_format" toml:"debug_format"` // json or yaml

	RequiredVersion string `mapstructure:"required_version" toml:"required_version"` // Semver constraint on the binary, e.g. ">= 0.3" ("" = any)
}

// SchemaConfig configures schema interpretation
type SchemaConfig struct {
	SystemFields       bool   `mapstructure:"system_fields" toml:"system_fields"`             // Inject _id and _creationTime (default: true)
	ValidatorNamespace string `mapstructure:"validator_namespace" toml:"validator_namespace"` // Identifier validators hang off (default: v)
}

// FunctionsConfig configures function signature extraction
type FunctionsConfig struct {
	Builders []string `mapstructure:"builders" toml:"builders"` // query, mutation, action and internal variants
}

// ParserConfig selects the syntax tree producer
type ParserConfig struct {
	Command string `mapstructure:"command" toml:"command"` // External ESTree parser command ("" = built-in parser)
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// Debug dump formats
const (
	DebugFormatJSON = "json"
	DebugFormatYAML = "yaml"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// ConfigFileName is searched for from the working directory upwards
const ConfigFileName = "convex-typegen.toml"
