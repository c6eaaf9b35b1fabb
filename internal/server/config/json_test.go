package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	body := `{
		"endpoint_addr": ":8081",
		"database_dsn": "postgres://u:p@h:5432/db",
		"cleanup_interval": "15m",
		"pin_ttl": "48h",
		"otp_validity_duration": "5m",
		"room_secret_key": "sekret",
		"s3_bucket": "clips",
		"frontend_url": "https://echo.example"
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8081", c.EndpointAddr)
	assert.Equal(t, "postgres://u:p@h:5432/db", c.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, c.CleanupInterval)
	assert.Equal(t, 48*time.Hour, c.PinTTL)
	assert.Equal(t, 5*time.Minute, c.OTPValidityDuration)
	assert.Equal(t, "sekret", c.RoomSecretKey)
	assert.Equal(t, "clips", c.S3Bucket)
	assert.Equal(t, "https://echo.example", c.FrontendURL)
}

func TestParseJson_NoFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":3001", c.EndpointAddr)
}
