package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig      = "BCCTL_CONFIG"
	EnvCredentials = "BCCTL_CREDENTIALS"
	EnvEndpoint    = "BCCTL_ENDPOINT"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath      string // BCCTL_CONFIG: config file path
	CredentialsFile string // BCCTL_CREDENTIALS: service-account key file
	Endpoint        string // BCCTL_ENDPOINT: API base URL
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:      os.Getenv(EnvConfig),
		CredentialsFile: os.Getenv(EnvCredentials),
		Endpoint:        os.Getenv(EnvEndpoint),
	}
}
