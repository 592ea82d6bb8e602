package config

// Validator is implemented by every section config
type Validator interface {
	Validate() error
}

// ValidateAll stops at the first failing section
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
