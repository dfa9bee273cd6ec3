package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsApplyWithoutEnvironment(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Reallocation.Enabled)
	assert.True(t, cfg.Reallocation.BookingsAsConflict)
	assert.False(t, cfg.Reallocation.RequireApprovedLeave)
	assert.Equal(t, 30*time.Second, cfg.Reallocation.LockTTL)
	assert.Equal(t, 5*time.Minute, cfg.Reallocation.CacheTTL)
	assert.Empty(t, cfg.Reallocation.HolidaysFile)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
}

func TestOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REALLOCATION_LOCK_TTL", "not-a-duration")
	v.Set("REALLOCATION_REQUIRE_APPROVED_LEAVE", true)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, 30*time.Second, cfg.Reallocation.LockTTL)
	assert.True(t, cfg.Reallocation.RequireApprovedLeave)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
