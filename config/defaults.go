package config

import "github.com/spf13/viper"

// Defaults for a project laid out the way `npx convex dev` creates it
const (
	DefaultSchemaPath = "convex/schema.ts"
	DefaultOutFile    = "src/convex_types.rs"
	DefaultNamespace  = "v"
)

// DefaultBuilders are the Convex function builders whose args are extracted
var DefaultBuilders = []string{
	"query",
	"mutation",
	"action",
	"internalQuery",
	"internalMutation",
	"internalAction",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("schema_path", DefaultSchemaPath)
	v.SetDefault("out_file", DefaultOutFile)
	v.SetDefault("function_paths", []string{})

	v.SetDefault("schema.system_fields", true)
	v.SetDefault("schema.validator_namespace", DefaultNamespace)

	v.SetDefault("functions.builders", DefaultBuilders)

	v.SetDefault("parser.command", "")

	v.SetDefault("log.json", false)

	v.SetDefault("debug_dir", "")
	v.SetDefault("debug_format", DebugFormatJSON)

	v.SetDefault("required_version", "")
}

// Default returns the configuration with every default applied
func Default() *Config {
	return &Config{
		SchemaPath:    DefaultSchemaPath,
		OutFile:       DefaultOutFile,
		FunctionPaths: []string{},
		Schema: SchemaConfig{
			SystemFields:       true,
			ValidatorNamespace: DefaultNamespace,
		},
		Functions: FunctionsConfig{
			Builders: append([]string(nil), DefaultBuilders...),
		},
		DebugFormat: DebugFormatJSON,
	}
}
