package config

const (
	EnvPrefix = "ARULTEX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ARULTEX_DB_DSN"
	EnvDBHost = "ARULTEX_DB_HOST"
	EnvDBUser = "ARULTEX_DB_USER"
	EnvDBName = "ARULTEX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
