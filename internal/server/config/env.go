package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset
// variables leave the current value untouched.
//
// Recognized variables:
//
//	ADDRESS                 HTTP bind address
//	DATABASE_DSN            PostgreSQL DSN
//	JWT_SECRET              JWT HMAC secret key
//	ACCESS_TOKEN_VALIDITY   token lifetime, Go duration string (e.g. "30m")
//	LEDGER_RPC_ENDPOINT     identity-ledger RPC endpoint
//	ENCRYPTION_SECRET       object encryption key secret (optional)
//	S3_ROOT_USER            S3 root user
//	S3_ROOT_PASSWORD        S3 root password
//	S3_BUCKET               S3 bucket name
//	S3_REGION               S3 region
//	S3_BASE_ENDPOINT        S3 base endpoint
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("JWT_SECRET", &config.SecretKey)
	setString("LEDGER_RPC_ENDPOINT", &config.LedgerRPCEndpoint)
	setString("ENCRYPTION_SECRET", &config.EncryptionSecret)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
}
