package httpx

// ErrorLoggingConfig controls whether HandleError writes failed requests
// to the "httpx" log module
type ErrorLoggingConfig struct {
	Enable bool `mapstructure:"enable" json:"enable"`

	// e.g. [404] keeps not-found noise out of the log
	IgnoreHTTPStatus []int `mapstructure:"ignore_http_status" json:"ignore_http_status"`

	// false logs only error_code and error_msg
	FullErrorChain bool `mapstructure:"full_error_chain" json:"full_error_chain"`

	// error, warn or info
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

func DefaultErrorLoggingConfig() ErrorLoggingConfig {
	return ErrorLoggingConfig{
		Enable:           true,
		IgnoreHTTPStatus: []int{},
		FullErrorChain:   true,
		LogLevel:         "error",
	}
}
