package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDriver(t *testing.T) {
	assert.True(t, Config{Driver: DriverSQLite}.IsValidDriver())
	assert.True(t, Config{Driver: DriverMySQL}.IsValidDriver())
	assert.False(t, Config{Driver: "postgres"}.IsValidDriver())
	assert.False(t, Config{}.IsValidDriver())
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
