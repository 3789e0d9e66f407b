package config

// Default values.
const (
	DefaultRoot            = "./repositories"
	DefaultListen          = ":8888"
	DefaultSiteName        = "gitview"
	DefaultSort            = "updated"
	DefaultHistoryPageSize = 50
	DefaultRemote          = "origin"
)

// CreateDefaultConfiguration returns a Config with all default values
// populated.
func CreateDefaultConfiguration() *Config {
	return &Config{
		Root:            stringPtr(DefaultRoot),
		Listen:          stringPtr(DefaultListen),
		SiteName:        stringPtr(DefaultSiteName),
		DefaultSort:     stringPtr(DefaultSort),
		HistoryPageSize: intPtr(DefaultHistoryPageSize),
		Fetch: FetchConfig{
			Remote: stringPtr(DefaultRemote),
		},
	}
}
