package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

// FileSource reads a YAML (or any viper-supported) file.
// A missing file yields an empty layer, not an error.
type FileSource struct {
	path     string
	priority int
}

func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Priority() int { return s.priority }

// Path returns the file path
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	return flattenMap("", v.AllSettings()), nil
}
