package config

const (
	// EnvPrefix namespaces every environment variable consumed by envconfig.
	EnvPrefix = "BOUTIQUE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BOUTIQUE_DB_DSN"
	EnvDBHost = "BOUTIQUE_DB_HOST"
	EnvDBUser = "BOUTIQUE_DB_USER"
	EnvDBName = "BOUTIQUE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
