// Package config merges layered configuration sources into one viper tree.
package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// Loader merges its sources from lowest to highest priority
type Loader struct {
	sources     []ConfigSource
	merged      map[string]interface{}
	v           *viper.Viper
	loadedFiles []string
}

func NewLoader() *Loader {
	return &Loader{
		merged: make(map[string]interface{}),
		v:      viper.New(),
	}
}

// AddSource registers a source; takes effect on the next Load
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load reads every source and rebuilds the merged tree
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]interface{})
	var files []string
	for _, src := range l.sources {
		data, err := src.Load()
		if err != nil {
			return fmt.Errorf("load config source %s: %w", src.Name(), err)
		}
		if fileSrc, ok := src.(*FileSource); ok && len(data) > 0 {
			files = append(files, fileSrc.Path())
		}
		for k, v := range data {
			merged[k] = v
		}
	}

	v := viper.New()
	for k, val := range merged {
		v.Set(k, val)
	}

	l.merged = merged
	l.loadedFiles = files
	l.v = v
	return nil
}

// Unmarshal decodes the whole tree into out
func (l *Loader) Unmarshal(out interface{}) error {
	return l.v.Unmarshal(out)
}

// UnmarshalKey decodes one section. A missing section leaves out untouched.
func (l *Loader) UnmarshalKey(key string, out interface{}) error {
	if !l.v.IsSet(key) {
		return nil
	}
	if err := l.v.UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("decode config section %q: %w", key, err)
	}
	return nil
}

func (l *Loader) Get(key string) interface{} { return l.v.Get(key) }

func (l *Loader) GetString(key string) string { return l.v.GetString(key) }

func (l *Loader) GetInt(key string) int { return l.v.GetInt(key) }

func (l *Loader) GetBool(key string) bool { return l.v.GetBool(key) }

func (l *Loader) IsSet(key string) bool { return l.v.IsSet(key) }

func (l *Loader) AllSettings() map[string]interface{} { return l.v.AllSettings() }

// LoadedFiles lists the files that contributed at least one key
func (l *Loader) LoadedFiles() []string { return l.loadedFiles }

// Reload re-reads every source
func (l *Loader) Reload() error { return l.Load() }
