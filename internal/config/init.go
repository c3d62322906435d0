package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
)

const initHeader = `# sergey configuration. Paths are relative to root.
# Command line flags and SERGEY_* environment variables take precedence.
`

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Concurrency = 4
	example.Exclude = []string{"drafts", "README.md"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
