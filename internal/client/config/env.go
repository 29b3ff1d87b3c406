package config

import "github.com/dmitrijs2005/divvault/internal/flagx"

func parseEnv(cfg *Config) {
	flagx.EnvString(&cfg.ServerEndpointAddr, "VAULT_SERVER_ADDR")
	flagx.EnvDuration(&cfg.RequestTimeout, "VAULT_REQUEST_TIMEOUT")
}
