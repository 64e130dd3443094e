package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// envFiles are read from the configuration directory in this order. Variables
// already present in the process environment are never overridden.
var envFiles = []string{".env", ".env.local"}

func loadEnvFile(dir string) error {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "load environment file").
				WithContext("path", path).
				Fatal().
				Build()
		}
	}
	return nil
}
