package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env resolves settings from the process environment, falling back to
// values read from dotenv files.
type Env struct {
	file map[string]string
}

// LoadEnv reads the given dotenv files. Missing files are skipped and later
// files override earlier ones. The process environment is not modified.
func LoadEnv(files ...string) (*Env, error) {
	values := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read env file %s: %w", f, err)
		}
		maps.Copy(values, m)
	}
	return &Env{file: values}, nil
}

// Get returns the non-empty process value of key, else the file value.
func (e *Env) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return e.file[key]
}

// List splits a comma-separated value, dropping blank entries.
func (e *Env) List(key string) []string {
	raw := e.Get(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
