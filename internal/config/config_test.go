package config

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Store Store `embed:""`
	Auth  Auth  `embed:""`
	HTTP  HTTP  `embed:""`
}

func parse(t *testing.T, args ...string) *testCLI {
	t.Helper()
	var cli testCLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	cli := parse(t)

	assert.Equal(t, StoreMemory, cli.Store.Type)
	assert.Equal(t, 5*time.Second, cli.Store.Timeout)
	assert.Equal(t, "organs", cli.Store.Mongo.Database)
	assert.Equal(t, time.Hour, cli.Auth.TokenTTL)
	assert.Equal(t, "0.0.0.0:8080", cli.HTTP.Listen)
	assert.Equal(t, "public", cli.HTTP.UploadDir)

	require.NoError(t, cli.Store.Validate())
	require.NoError(t, cli.HTTP.Validate())
}

func TestFlags(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	cli := parse(t, "--store", "mongo", "--mongo-uri", "mongodb://localhost:27017", "--store-timeout", "2s")

	assert.Equal(t, StoreMongo, cli.Store.Type)
	assert.Equal(t, 2*time.Second, cli.Store.Timeout)
	require.NoError(t, cli.Store.Validate())
}

func TestEnvironment(t *testing.T) {
	t.Setenv("ORGANS_STORE_TYPE", "postgres")
	t.Setenv("POSTGRES_CONNECTION_STRING", "postgres://user:pw@localhost/db")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cli := parse(t)
	assert.Equal(t, StorePostgres, cli.Store.Type)
	assert.Equal(t, "postgres://user:pw@localhost/db", cli.Store.Postgres.ConnString)
	require.NoError(t, cli.Store.Validate())
	require.NoError(t, cli.Auth.Validate())
}

func TestStoreValidate(t *testing.T) {
	err := (&Store{Type: StorePostgres, Timeout: time.Second}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_CONNECTION_STRING")

	err = (&Store{Type: StoreMongo, Timeout: time.Second}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")

	require.Error(t, (&Store{Type: StoreMemory}).Validate())
	require.NoError(t, (&Store{Type: StoreMemory, Timeout: time.Second}).Validate())
}

func TestAuthValidate(t *testing.T) {
	tests := []struct {
		name    string
		auth    Auth
		wantErr bool
	}{
		{name: "missing secret", auth: Auth{TokenTTL: time.Hour}, wantErr: true},
		{name: "short secret", auth: Auth{JWTSecret: "short", TokenTTL: time.Hour}, wantErr: true},
		{name: "zero ttl", auth: Auth{JWTSecret: "0123456789abcdef"}, wantErr: true},
		{name: "valid", auth: Auth{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auth.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
