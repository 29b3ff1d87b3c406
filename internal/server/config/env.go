package config

import (
	"os"

	"github.com/dmitrijs2005/divvault/internal/flagx"
)

// parseEnv overlays settings from the environment. PORT (optionally with
// HOST) is honoured for container platforms that inject it.
func parseEnv(config *Config) {
	flagx.EnvString(&config.DatabaseDSN, "VAULT_DATABASE_DSN", "DATABASE_DSN")
	flagx.EnvString(&config.SecretKey, "VAULT_SECRET_KEY", "JWT_SECRET")
	flagx.EnvString(&config.EndpointAddrGRPC, "VAULT_GRPC_ADDR")
	flagx.EnvDuration(&config.AccessTokenValidityDuration, "VAULT_TOKEN_TTL")
	flagx.EnvInt(&config.PasswordHashCost, "VAULT_PASSWORD_HASH_COST")
	flagx.EnvString(&config.LogBackend, "LOG_BACKEND")
	flagx.EnvString(&config.LogLevel, "LOG_LEVEL")
	flagx.EnvString(&config.SeedFixture, "VAULT_SEED_FIXTURE")
	flagx.EnvString(&config.S3RootUser, "S3_ROOT_USER")
	flagx.EnvString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	flagx.EnvString(&config.S3Region, "S3_REGION")
	flagx.EnvString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	flagx.EnvString(&config.EndpointAddrHTTP, "VAULT_HTTP_ADDR")
	host, port := os.Getenv("HOST"), os.Getenv("PORT")
	if port != "" {
		config.EndpointAddrHTTP = host + ":" + port
	}
}
