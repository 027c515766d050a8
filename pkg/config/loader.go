// Package config fills env-tagged structs from the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load copies environment variables into cfg, a pointer to a struct with
// `env` and `envDefault` tags.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithDotEnv exports the variables of each existing dotenv file and then
// calls Load. godotenv never overrides a variable that is already set, so
// the real environment wins over the files.
func LoadWithDotEnv(cfg any, files ...string) error {
	var present []string
	for _, f := range files {
		_, err := os.Stat(f)
		switch {
		case err == nil:
			present = append(present, f)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("stat %s: %w", f, err)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return fmt.Errorf("load dotenv: %w", err)
		}
	}
	return Load(cfg)
}
