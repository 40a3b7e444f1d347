package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flzt_checkin/internal/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvBaseURL, EnvEmail, EnvPassword, EnvConvert, EnvConvertAmount,
		EnvUserAgent, EnvTimeoutMs, EnvMinIntervalMs, EnvLogLevel,
		EnvBarkPush, EnvTGBotToken, EnvTGUserID, EnvTGAPIHost,
		EnvSMTPServer, EnvSMTPSSL, EnvSMTPEmail, EnvSMTPPassword, EnvSMTPName,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, " https://example.test/ ")
	t.Setenv(EnvEmail, "user@example.test")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvConvert, "true")
	t.Setenv(EnvConvertAmount, "300")
	t.Setenv(EnvTGUserID, "42")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", cfg.Provider.BaseURL)
	assert.Equal(t, "user@example.test", cfg.Account.Email)
	assert.Equal(t, "secret", cfg.Account.Password)
	assert.True(t, cfg.Convert.Enabled)
	assert.Equal(t, int64(300), cfg.Convert.AmountMB)
	assert.Equal(t, int64(42), cfg.Notify.Telegram.UserID)
	assert.Equal(t, utils.DefaultUserAgent(), cfg.Provider.UserAgent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.Provider.Timeout())
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name string
		set  map[string]string
		want string
	}{
		{name: "base url", set: map[string]string{EnvEmail: "a@b.c", EnvPassword: "p"}, want: EnvBaseURL},
		{name: "email", set: map[string]string{EnvBaseURL: "https://x", EnvPassword: "p"}, want: EnvEmail},
		{name: "password", set: map[string]string{EnvBaseURL: "https://x", EnvEmail: "a@b.c"}, want: EnvPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.set {
				t.Setenv(k, v)
			}
			_, err := Load("")
			var missing *MissingError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tc.want, missing.Key)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
provider:
  baseURL: https://from-file.test
  timeoutMs: 1500
account:
  email: file@example.test
  password: filepass
convert:
  enabled: true
  amountMb: 100
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv(EnvPassword, "envpass")
	t.Setenv(EnvConvert, "off")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.test", cfg.Provider.BaseURL)
	assert.Equal(t, "file@example.test", cfg.Account.Email)
	assert.Equal(t, "envpass", cfg.Account.Password)
	assert.False(t, cfg.Convert.Enabled)
	assert.Equal(t, int64(100), cfg.Convert.AmountMB)
	assert.Equal(t, int64(1500), cfg.Provider.Timeout().Milliseconds())
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://x")
	t.Setenv(EnvEmail, "a@b.c")
	t.Setenv(EnvPassword, "p")
	t.Setenv(EnvConvertAmount, "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConvertAmount)
}
