package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFiles are read by LoadDotEnv, in order.
var EnvFiles = []string{".env", ".env.local"}

// LoadDotEnv loads the dotenv files in dir that exist. Variables already set
// in the process environment, or by an earlier file, are kept. It returns the
// files that were loaded.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range EnvFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, err
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
