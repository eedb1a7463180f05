package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("minor")
	require.NoError(t, err)
	assert.Equal(t, RoleMinor, r)

	r, err = ParseRole("adult")
	require.NoError(t, err)
	assert.Equal(t, RoleAdult, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseRole("Adult")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleStringRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleMinor, RoleAdult} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
}

func TestPasswordHashCompare(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, ComparePassword(hash, "hunter2hunter2"))
	assert.False(t, ComparePassword(hash, "wrong"))
	assert.False(t, ComparePassword("not-a-hash", "hunter2hunter2"))
}
