package constants

const (
	AppName    = "mindbook"
	EnvPrefix  = "MINDBOOK"
	ConfigName = "config"

	ConfigFormat = "yaml"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)
