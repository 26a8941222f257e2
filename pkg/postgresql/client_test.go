package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ConnectionString(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name: "discrete fields",
			config: Config{
				Host:     "db",
				Port:     5432,
				Database: "market_feed",
				Username: "feed",
				Password: "s3cret",
				SSLMode:  "disable",
			},
			want: "postgres://feed:s3cret@db:5432/market_feed?sslmode=disable",
		},
		{
			name: "url wins",
			config: Config{
				URL:  "postgres://other:pw@remote:6543/registry",
				Host: "db",
			},
			want: "postgres://other:pw@remote:6543/registry",
		},
		{
			name: "ssl files are appended",
			config: Config{
				Host:        "db",
				Port:        5432,
				Database:    "market_feed",
				Username:    "feed",
				SSLMode:     "verify-full",
				SSLRootCert: "/etc/ca.pem",
			},
			want: "postgres://feed:@db:5432/market_feed?sslmode=verify-full&sslrootcert=%2Fetc%2Fca.pem",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.config.ConnectionString())
		})
	}
}

func TestRedactConnectionString(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "password masked", input: "postgres://feed:s3cret@db:5432/market_feed", want: "postgres://feed:xxxxx@db:5432/market_feed"},
		{name: "no password", input: "postgres://feed@db/market_feed", want: "postgres://feed@db/market_feed"},
		{name: "not a url", input: "host=db password=s3cret", want: "[redacted]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactConnectionString(tc.input)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, "s3cret")
		})
	}

	assert.NotContains(t, Config{URL: "postgres://a:topsecret@h/d"}.Redacted(), "topsecret")
}
