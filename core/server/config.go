package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// PageSize is the default page size for paginated listings.
	PageSize int `mapstructure:"page_size" default:"20"`
}

// EffectivePageSize returns the configured page size, falling back to 20
// when the value is missing or invalid.
func (c Config) EffectivePageSize() int {
	if c.PageSize <= 0 {
		return 20
	}
	return c.PageSize
}
