package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "VERIFY_REDIRECT_URL", "PUBLIC_BASE_URL", "USER_CACHE_TTL", "MAIL_SEND_ENABLED", "ELASTICSEARCH_ADDRS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "http://localhost:3000", cfg.VerifyRedirectURL)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.False(t, cfg.MailSendEnabled)
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("PUBLIC_BASE_URL", "https://users.example.com/")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("MAIL_SEND_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("ELASTICSEARCH_ADDRS", "http://es1:9200,http://es2:9200")
	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "https://users.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.True(t, cfg.MailSendEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Len(t, cfg.ESAddrs(), 2)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "users", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/users?sslmode=disable", cfg.PostgresDSN())
}

func TestBrandAndMailgunConfigured(t *testing.T) {
	cfg := &Config{AppName: "app", CompanyName: "co", SupportURL: "https://help", MailgunDomain: "d", MailgunAPIKey: "k"}
	b := cfg.Brand()
	assert.Equal(t, "app", b.AppName)
	assert.Equal(t, "co", b.CompanyName)
	assert.False(t, cfg.MailgunConfigured())
	cfg.MailgunSender = "no-reply@d"
	assert.True(t, cfg.MailgunConfigured())
}
