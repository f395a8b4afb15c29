package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SUPPLYSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SUPPLYSYNC_DB_DSN"
	EnvDBHost = "SUPPLYSYNC_DB_HOST"
	EnvDBUser = "SUPPLYSYNC_DB_USER"
	EnvDBName = "SUPPLYSYNC_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
