package config

// EnvPrefix is the envconfig prefix for all FoodCircle settings.
const EnvPrefix = "FOODCIRCLE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FOODCIRCLE_DB_DSN"
	EnvDBHost = "FOODCIRCLE_DB_HOST"
	EnvDBUser = "FOODCIRCLE_DB_USER"
	EnvDBName = "FOODCIRCLE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
