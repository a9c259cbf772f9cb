package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/pkg/config"
)

func TestLoad_SinJWTSecretFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err, "sin secret el proceso no debe arrancar")
}

func TestLoad_ValoresPorDefectoYEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_POS_EXPIRATION_MINUTES", "15")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_PUBLIC_URL", "https://pos.example.com/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 7*24*60, cfg.JWT.Expiration, "el back office usa sesiones de varios días")
	assert.Equal(t, 15, cfg.JWT.POSExpiration)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "https://pos.example.com", cfg.App.PublicURL)
	assert.False(t, cfg.Mail.Enabled())
}

func TestValidate_AlgoritmoNoSoportado(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_ALGORITHM", "none")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss/word", DBName: "dwc_pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%2Fword@db:5432/dwc_pos?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestHTTPConfig_CORSOriginList(t *testing.T) {
	c := config.HTTPConfig{CORSOrigins: " https://a.com , ,https://b.com"}
	assert.Equal(t, "https://a.com,https://b.com", c.CORSOriginList())
}
