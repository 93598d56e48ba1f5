package remote

// Config holds the endpoints and pacing of the remote catalog sources.
type Config struct {
	// MarketBaseURL is the tarkov-market API root.
	MarketBaseURL string `mapstructure:"market_base_url" default:"https://api.tarkov-market.app"`
	// MarketAPIKey is sent as x-api-key to tarkov-market.
	MarketAPIKey string `mapstructure:"market_api_key" default:""`
	// TarkovDevEndpoint is the tarkov.dev GraphQL endpoint.
	TarkovDevEndpoint string `mapstructure:"tarkovdev_endpoint" default:"https://api.tarkov.dev/graphql"`
	// TimeoutSeconds bounds one remote request, body included.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
	// RequestsPerSecond paces requests shared by both sources.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"2"`
	// Burst is the limiter bucket size.
	Burst int `mapstructure:"burst" default:"1"`
	// UserAgent is sent on every request.
	UserAgent string `mapstructure:"user_agent" default:"catalog-sync/1.0"`
}
