package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultDir holds base.yaml and the <profile>.yaml overlays.
	DefaultDir = "configs"

	envPrefix = "APP_"
)

// Load reads configuration from DefaultDir. See LoadDir.
func Load(profile string) (*Config, error) {
	return LoadDir(DefaultDir, profile)
}

// LoadDir layers, lowest first: Default, dir/base.yaml, dir/<profile>.yaml,
// then APP_ variables (APP_DAILY_QUOTE_HISTORY_DAYS sets
// daily_quote.history_days). Missing files are skipped. The result is not
// validated.
func LoadDir(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"base"}
	if profile != "" {
		files = append(files, profile)
	}

	for _, name := range files {
		if err := loadYAML(k, filepath.Join(dir, name+".yaml")); err != nil {
			return nil, fmt.Errorf("loading %s config: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper resolves a variable against the keys already loaded, so
// underscores inside a key survive. Unknown variables split on every
// underscore.
func envKeyMapper(known []string) func(string) string {
	byEnv := make(map[string]string, len(known))
	for _, key := range known {
		byEnv[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		raw := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if key, ok := byEnv[raw]; ok {
			return key
		}

		return strings.ReplaceAll(raw, "_", ".")
	}
}

func loadYAML(k *koanf.Koanf, path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
