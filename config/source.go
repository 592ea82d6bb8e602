package config

// Standard source priorities; a higher value overrides a lower one
const (
	PriorityFile    = 10
	PriorityEnvFile = 20
	PriorityEnv     = 50
	PriorityFlag    = 100
)

// ConfigSource is one layer of configuration. Load returns flat,
// dot-separated keys such as "cache.single_flight".
type ConfigSource interface {
	Name() string
	Priority() int
	Load() (map[string]interface{}, error)
}

// flattenMap turns {"cache": {"driver": "redis"}} into {"cache.driver": "redis"}
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for key, value := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flattenMap(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}
