package config

import (
	"os"
	"strings"
)

// EnvSource maps prefixed environment variables onto config keys.
// A double underscore separates sections, a single one stays inside the key:
//
//	APP_CACHE__SINGLE_FLIGHT=false  ->  cache.single_flight
//	APP_REDIS__INSTANCES__MAIN__ADDR ->  redis.instances.main.addr
type EnvSource struct {
	prefix   string
	priority int
	environ  func() []string
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority, environ: os.Environ}
}

func (s *EnvSource) Name() string { return "env:" + s.prefix }

func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, kv := range s.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		if key == "" || key == "env" {
			continue
		}
		result[strings.ReplaceAll(key, "__", ".")] = value
	}
	return result, nil
}
