package config

import (
	"github.com/spf13/pflag"
)

// FlagSource exposes command line flags the user actually set.
// bindings maps a flag name to its config key, e.g. "port" -> "api_server.port".
type FlagSource struct {
	flags    *pflag.FlagSet
	bindings map[string]string
	priority int
}

func NewFlagSource(flags *pflag.FlagSet, bindings map[string]string, priority int) *FlagSource {
	return &FlagSource{flags: flags, bindings: bindings, priority: priority}
}

func (s *FlagSource) Name() string { return "flags" }

func (s *FlagSource) Priority() int { return s.priority }

func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.flags == nil {
		return result, nil
	}
	for name, key := range s.bindings {
		f := s.flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		result[key] = f.Value.String()
	}
	return result, nil
}
