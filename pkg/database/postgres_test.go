package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "audit", Password: "p@ss word", Name: "timetable"})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/timetable", u.Path)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "timetable-api", u.Query().Get("application_name"))
}

func TestDSNKeepsConfiguredSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Name: "n", SSLMode: "require"})
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
