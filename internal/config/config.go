package config

// Version information, set at build time

var Version = "development"
var CommitHash = "development"
var BuildTimestamp = "0000-00-00T00:00:00Z"

// Base name for the session cookie

var SessionCookieName = "tinypost-session"

// Env var prefix used by the env loader

var DefaultNamePrefix = "TINYPOST_"

// Supported platforms

const PlatformLinkedIn = "LINKEDIN"

// Main app config

type Config struct {
	AppURL       string           `description:"The base URL where the app is hosted." yaml:"appUrl"`
	DatabasePath string           `description:"The path to the database file." yaml:"databasePath"`
	ConfigFile   string           `description:"Path to a YAML or TOML config file." yaml:"-"`
	Server       ServerConfig     `description:"Server configuration." yaml:"server"`
	LinkedIn     LinkedInConfig   `description:"LinkedIn application configuration." yaml:"linkedin"`
	Handshake    HandshakeConfig  `description:"OAuth handshake storage configuration." yaml:"handshake"`
	Redis        RedisConfig      `description:"Redis configuration, used when the handshake store is redis." yaml:"redis"`
	Client       HTTPClientConfig `description:"Outbound HTTP client configuration." yaml:"client"`
	Security     SecurityConfig   `description:"Security configuration." yaml:"security"`
	Sources      SourcesConfig    `description:"Content source polling configuration." yaml:"sources"`
	RateLimit    RateLimitConfig  `description:"Per tenant API rate limit." yaml:"rateLimit"`
	Metrics      MetricsConfig    `description:"Metrics configuration." yaml:"metrics"`
	Log          LogConfig        `description:"Logging configuration." yaml:"log"`
}

type ServerConfig struct {
	Port           int    `description:"The port on which the server listens." yaml:"port"`
	Address        string `description:"The address on which the server listens." yaml:"address"`
	TrustedProxies string `description:"Comma separated list of trusted proxy addresses." yaml:"trustedProxies"`
	SecureCookie   bool   `description:"Set the secure flag on the session cookie." yaml:"secureCookie"`
}

type LinkedInConfig struct {
	ClientID         string   `description:"LinkedIn OAuth client ID." yaml:"clientId"`
	ClientSecret     string   `description:"LinkedIn OAuth client secret." yaml:"clientSecret"`
	ClientSecretFile string   `description:"Path to a file containing the LinkedIn client secret." yaml:"clientSecretFile"`
	RedirectURL      string   `description:"OAuth redirect URL, defaults to the callback route under the app URL." yaml:"redirectUrl"`
	Scopes           []string `description:"Scopes requested when connecting an account." yaml:"scopes"`
	AuthURL          string   `description:"Authorization endpoint." yaml:"authUrl"`
	TokenURL         string   `description:"Token endpoint." yaml:"tokenUrl"`
	APIURL           string   `description:"Base URL of the LinkedIn API." yaml:"apiUrl"`
	APIVersion       string   `description:"Value of the LinkedIn-Version header." yaml:"apiVersion"`
}

type HandshakeConfig struct {
	Store string `description:"Handshake store, database or redis." yaml:"store"`
	TTL   int    `description:"Handshake lifetime in seconds." yaml:"ttl"`
}

type RedisConfig struct {
	Address      string `description:"Redis address (host:port)." yaml:"address"`
	Password     string `description:"Redis password." yaml:"password"`
	PasswordFile string `description:"Path to a file containing the Redis password." yaml:"passwordFile"`
	DB           int    `description:"Redis database number." yaml:"db"`
}

type HTTPClientConfig struct {
	Timeout      int `description:"Timeout for outbound requests in seconds." yaml:"timeout"`
	MaxRetries   int `description:"Retries for transient failures." yaml:"maxRetries"`
	RetryBackoff int `description:"Fixed delay between retries in milliseconds." yaml:"retryBackoff"`
}

type SecurityConfig struct {
	TokenEncryptionKey     string `description:"Key used to encrypt stored tokens (32 bytes, base64)." yaml:"tokenEncryptionKey"`
	TokenEncryptionKeyFile string `description:"Path to a file containing the token encryption key." yaml:"tokenEncryptionKeyFile"`
}

type SourcesConfig struct {
	PollInterval int   `description:"Interval between source polls in seconds, 0 disables polling." yaml:"pollInterval"`
	MaxItems     int   `description:"Maximum items imported per poll." yaml:"maxItems"`
	MaxBodySize  int64 `description:"Maximum feed size in bytes." yaml:"maxBodySize"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `description:"Allowed API requests per tenant per minute, 0 disables the limiter." yaml:"requestsPerMinute"`
	Burst             int `description:"Burst size." yaml:"burst"`
}

type MetricsConfig struct {
	Enabled bool `description:"Expose Prometheus metrics on /metrics." yaml:"enabled"`
}

type LogConfig struct {
	Level   string     `description:"Log level (trace, debug, info, warn, error)." yaml:"level"`
	Json    bool       `description:"Enable JSON formatted logs." yaml:"json"`
	Streams LogStreams `description:"Configuration for specific log streams." yaml:"streams"`
}

type LogStreams struct {
	HTTP  LogStreamConfig `description:"HTTP request logging." yaml:"http"`
	App   LogStreamConfig `description:"Application logging." yaml:"app"`
	Audit LogStreamConfig `description:"Audit logging." yaml:"audit"`
}

type LogStreamConfig struct {
	Enabled bool   `description:"Enable this log stream." yaml:"enabled"`
	Level   string `description:"Log level for this stream, defaults to the global level." yaml:"level"`
}

func NewDefaultConfiguration() *Config {
	return &Config{
		DatabasePath: "./tinypost.db",
		Server: ServerConfig{
			Port:    3000,
			Address: "0.0.0.0",
		},
		LinkedIn: LinkedInConfig{
			Scopes:     []string{"openid", "profile", "email", "w_member_social"},
			AuthURL:    "https://www.linkedin.com/oauth/v2/authorization",
			TokenURL:   "https://www.linkedin.com/oauth/v2/accessToken",
			APIURL:     "https://api.linkedin.com",
			APIVersion: "202401",
		},
		Handshake: HandshakeConfig{
			Store: "database",
			TTL:   600,
		},
		Client: HTTPClientConfig{
			Timeout:      30,
			MaxRetries:   2,
			RetryBackoff: 500,
		},
		Sources: SourcesConfig{
			PollInterval: 900,
			MaxItems:     20,
			MaxBodySize:  5 << 20,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			Burst:             20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
			Json:  false,
			Streams: LogStreams{
				HTTP:  LogStreamConfig{Enabled: true},
				App:   LogStreamConfig{Enabled: true},
				Audit: LogStreamConfig{Enabled: true},
			},
		},
	}
}

// Request context

type UserContext struct {
	Username  string
	TenantID  int64
	SessionID string
}

// Redirect queries

type FlashQuery struct {
	Status  string `url:"status"`
	Message string `url:"message"`
	Ref     string `url:"ref,omitempty"`
}
