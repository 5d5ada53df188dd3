// Package flagx layers configuration sources shared by the server and the
// client: YAML file, .env file, process environment and command-line flags.
// Each config describes its fields once as a list of Settings and every
// source writes through that list.
package flagx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Setting binds one configuration value to its flag and environment names.
// Value must be a *string, *int, *bool or *time.Duration.
type Setting struct {
	Name  string
	Short string
	Usage string
	Value any
}

// EnvName returns the environment variable read for a setting, e.g.
// EnvName("DREAMSYNC", "grpc-addr") is DREAMSYNC_GRPC_ADDR.
func EnvName(prefix, name string) string {
	n := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if prefix == "" {
		return n
	}
	return prefix + "_" + n
}

// Set parses raw into the setting's value.
func Set(s Setting, raw string) error {
	switch v := s.Value.(type) {
	case *string:
		*v = raw
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		*v = n
	case *bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		*v = b
	case *time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		*v = d
	default:
		return fmt.Errorf("%s: unsupported setting type %T", s.Name, s.Value)
	}
	return nil
}

// Register adds one flag per setting to fs. Current values become the flag
// defaults shown in help; flags are not bound to the values until ApplyFlags.
func Register(fs *pflag.FlagSet, settings []Setting) {
	for _, s := range settings {
		switch v := s.Value.(type) {
		case *string:
			fs.StringP(s.Name, s.Short, *v, s.Usage)
		case *int:
			fs.IntP(s.Name, s.Short, *v, s.Usage)
		case *bool:
			fs.BoolP(s.Name, s.Short, *v, s.Usage)
		case *time.Duration:
			fs.DurationP(s.Name, s.Short, *v, s.Usage)
		}
	}
}

// ApplyFlags copies the flags the user actually set onto their settings.
func ApplyFlags(fs *pflag.FlagSet, settings []Setting) error {
	byName := make(map[string]Setting, len(settings))
	for _, s := range settings {
		byName[s.Name] = s
	}
	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		if s, ok := byName[f.Name]; ok {
			errs = append(errs, Set(s, f.Value.String()))
		}
	})
	return errors.Join(errs...)
}

// ApplyEnv overlays every setting whose environment variable is present.
func ApplyEnv(prefix string, settings []Setting, lookup func(string) (string, bool)) error {
	var errs []error
	for _, s := range settings {
		if raw, ok := lookup(EnvName(prefix, s.Name)); ok {
			errs = append(errs, Set(s, raw))
		}
	}
	return errors.Join(errs...)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadYAML decodes the YAML file at path onto out, leaving fields absent from
// the file untouched. An empty path is a no-op.
func LoadYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
