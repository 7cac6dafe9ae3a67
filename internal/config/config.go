package config

type Config interface {
	EnvConfig
	SecurityConfig
	UpstreamConfig
}

type mainConfig struct {
	EnvVars
	Security
	Upstream
}

func New() Config {
	return mainConfig{}
}
