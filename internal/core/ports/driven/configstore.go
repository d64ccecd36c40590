package driven

// ConfigStore provides access to persisted settings. Keys are dotted
// paths such as "google.client_id".
type ConfigStore interface {
	// Get retrieves a value and reports whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" if the key is missing or not a string.
	GetString(key string) string

	// GetInt returns 0 if the key is missing or not an integer.
	GetInt(key string) int

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Unset removes a key and persists immediately.
	Unset(key string) error

	// Keys returns every stored key, sorted.
	Keys() []string

	// Path returns the backing file path.
	Path() string
}
