package cli

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvOverrideVar names a variable that points at an env file and wins over --env.
const EnvOverrideVar = "TRANSLATION_TOOLS_ENV_FILE"

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	fs          *flag.FlagSet
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		fs:          fs,
		value:       value,
		defaultPath: defaultPath,
	}
}

// Load resolves and loads environment variables. It returns the file that was
// loaded, or "" when no file exists. The default .env is optional; a file
// named explicitly by --env or TRANSLATION_TOOLS_ENV_FILE must load.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(EnvOverrideVar)); custom != "" {
		if err := godotenv.Overload(custom); err != nil {
			return "", fmt.Errorf("load %s=%s: %w", EnvOverrideVar, custom, err)
		}
		return custom, nil
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	err := godotenv.Overload(requested)
	if err == nil {
		return requested, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load env file %s: %w", requested, err)
	}

	base := filepath.Base(requested)
	if base != "" && base != requested {
		if err := godotenv.Overload(base); err == nil {
			return base, nil
		}
	}

	if l.explicit() {
		return "", fmt.Errorf("env file %s not found", requested)
	}
	return "", nil
}

func (l *EnvLoader) explicit() bool {
	if l.fs == nil {
		return false
	}
	set := false
	l.fs.Visit(func(f *flag.Flag) {
		if f.Name == "env" {
			set = true
		}
	})
	return set
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
