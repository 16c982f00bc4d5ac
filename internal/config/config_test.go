package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "a-long-enough-admin-token")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Security.AccountLockThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Security.AccountLockDuration)
	assert.Equal(t, 20, cfg.Security.IPLockThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Security.IPLockDuration)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoad_RequiresAdminToken(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortAdminTokenInProduction(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "only-20-characters!!")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresDBPassword(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "a-long-enough-admin-token")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_OverridesLockPolicies(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCOUNT_LOCK_THRESHOLD", "3")
	t.Setenv("ACCOUNT_LOCK_DURATION", "5m")
	t.Setenv("IP_LOCK_THRESHOLD", "50")
	t.Setenv("IP_FAILURE_WINDOW", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Security.AccountLockThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Security.AccountLockDuration)
	assert.Equal(t, 50, cfg.Security.IPLockThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Security.IPFailureWindow)
}

func TestLoad_RejectsZeroThreshold(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCOUNT_LOCK_THRESHOLD", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_TrustedProxiesList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
}

func TestLoad_EmailEnabledRequiresFromAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("EMAIL_FROM_ADDRESS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "authgate", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=authgate sslmode=require", cfg.DSN())
}
