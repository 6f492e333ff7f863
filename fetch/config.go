package fetch

const (
	defaultUserAgent    = "wordcount/1.0"
	defaultMaxBodyBytes = 10 << 20
)

// Config holds HTTP retrieval settings. The per-request deadline is not
// configured here; callers bound each Fetch with their context.
type Config struct {
	UserAgent    string  `json:"user_agent,omitempty"`
	MaxBodyBytes int64   `json:"max_body_bytes,omitempty"`
	RateLimit    float64 `json:"rate_limit,omitempty"` // requests per second across the client; 0 disables
	RateBurst    int     `json:"rate_burst,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		UserAgent:    defaultUserAgent,
		MaxBodyBytes: defaultMaxBodyBytes,
		RateBurst:    1,
	}
}

func (c *Config) Merge(source *Config) {
	if source.UserAgent != "" {
		c.UserAgent = source.UserAgent
	}

	if source.MaxBodyBytes > 0 {
		c.MaxBodyBytes = source.MaxBodyBytes
	}

	if source.RateLimit > 0 {
		c.RateLimit = source.RateLimit
	}

	if source.RateBurst > 0 {
		c.RateBurst = source.RateBurst
	}
}
