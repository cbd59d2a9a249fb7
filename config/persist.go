package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/convex-typegen/errors"
)

const configHeader = `# convex-typegen configuration
# Every key can be overridden with CONVEX_TYPEGEN_<KEY> (dots become underscores).

`

// WriteDefault writes the default configuration to path.
// An existing file is left untouched unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.WithHint(
				errors.Newf("config file %s already exists", path),
				"pass --force to overwrite it")
		}
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "failed to encode default config")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return errors.NewIOError(path, err)
		}
	}

	if err := os.WriteFile(path, append([]byte(configHeader), data...), DefaultFilePermissions); err != nil {
		return errors.NewIOError(path, err)
	}
	return nil
}
