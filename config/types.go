package config

// Config represents the complete configuration structure
type Config struct {
	Trakt   TraktConfig   `mapstructure:"trakt"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TraktConfig holds the API application credentials and auth settings
type TraktConfig struct {
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	BaseURL         string `mapstructure:"base_url"`
	SiteURL         string `mapstructure:"site_url"`
	RedirectURI     string `mapstructure:"redirect_uri"`
	AuthMethod      string `mapstructure:"auth_method"`
	ApplicationID   string `mapstructure:"application_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
