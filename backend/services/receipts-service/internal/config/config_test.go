package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicKeyB64(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return base64.StdEncoding.EncodeToString(pemBytes)
}

func setBaseEnv(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_URL_FROM_ANYWHERE", "https://api.example.test/")
	t.Setenv("DB_URL", "postgres://localhost/receipts")
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("RSA_PUBLIC_KEY_BASE64", publicKeyB64(t))
	t.Setenv("LD_SDK_KEY", "")
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaultsWithoutYAML(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test", cfg.AppUrl)
	assert.Equal(t, "https://api.example.test", cfg.FrontendUrl)
	assert.Equal(t, "/landlord/quittances", cfg.LandlordUIPath)
	assert.Equal(t, 600*time.Second, cfg.SignedURLTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.ConfirmTokenTTL)
	assert.Equal(t, "Europe/Paris", cfg.DefaultTimezone)
	assert.True(t, cfg.LDFlag_SendgridSandboxMode)
	assert.False(t, cfg.Storage.Enabled())
	assert.NotNil(t, cfg.RSAPublicKey)
}

func TestLoadReadsYAMLWithEnvExpansion(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECEIPTS_BUCKET", "quittances-dev")
	t.Setenv("OSS_ACCESS_KEY_ID", "id")
	t.Setenv("OSS_ACCESS_KEY_SECRET", "secret")
	t.Setenv("SMS_REMINDERS", "true")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
frontend:
  url: https://app.example.test
storage:
  endpoint: oss-eu-central-1.aliyuncs.com
  bucket: ${RECEIPTS_BUCKET}
schedule:
  reminder_cron: "15 * * * *"
  default_timezone: Europe/Brussels
receipts:
  signed_url_ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.test", cfg.FrontendUrl)
	assert.Equal(t, "quittances-dev", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "15 * * * *", cfg.ReminderCronSpec)
	assert.Equal(t, "5 * * * *", cfg.AutoSendCronSpec)
	assert.Equal(t, "Europe/Brussels", cfg.DefaultTimezone)
	assert.Equal(t, 5*time.Minute, cfg.SignedURLTTL)
	assert.True(t, cfg.LDFlag_SMSReminders)
}

func TestLoadRejectsBadInput(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CRON_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "CRON_SECRET")

	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  auto_send_cron: \"not a cron\"\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	_, err = Load()
	assert.ErrorContains(t, err, "invalid cron spec")

	setBaseEnv(t)
	t.Setenv("RSA_PUBLIC_KEY_BASE64", base64.StdEncoding.EncodeToString([]byte("nope")))
	_, err = Load()
	assert.ErrorContains(t, err, "PEM")
}
