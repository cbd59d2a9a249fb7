package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/convex-typegen/errors"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SchemaPath) == "" {
		return errors.New("schema_path cannot be empty")
	}
	if strings.TrimSpace(c.OutFile) == "" {
		return errors.New("out_file cannot be empty")
	}

	for i, p := range c.FunctionPaths {
		if strings.TrimSpace(p) == "" {
			return errors.Newf("function_paths[%d] cannot be empty", i)
		}
	}

	if c.Schema.ValidatorNamespace == "" {
		return errors.New("schema.validator_namespace cannot be empty")
	}

	if len(c.Functions.Builders) == 0 {
		return errors.WithHint(
			errors.New("functions.builders cannot be empty"),
			"omit the key to use query, mutation, action and their internal variants")
	}

	switch c.DebugFormat {
	case "", DebugFormatJSON, DebugFormatYAML:
	default:
		return errors.Newf("debug_format must be %q or %q, got %q", DebugFormatJSON, DebugFormatYAML, c.DebugFormat)
	}

	if c.RequiredVersion != "" {
		if _, err := semver.NewConstraint(c.RequiredVersion); err != nil {
			return errors.Wrapf(err, "required_version %q is not a valid constraint", c.RequiredVersion)
		}
	}

	return nil
}
