package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("hashes password", func(t *testing.T) {
		u, err := NewUser(uuid.New(), "Admin@Example.com", "Admin", "s3cret-pass", "")
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", u.Email)
		assert.Equal(t, RoleMember, u.Role)
		assert.True(t, u.Active)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cret-pass"))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewUser(uuid.New(), "", "Admin", "s3cret-pass", RoleAdmin)
		assert.Error(t, err)
		_, err = NewUser(uuid.New(), "a@b.co", "", "s3cret-pass", RoleAdmin)
		assert.Error(t, err)
		_, err = NewUser(uuid.New(), "a@b.co", "A", "short", RoleAdmin)
		assert.Error(t, err)
		_, err = NewUser(uuid.New(), "a@b.co", "A", "s3cret-pass", "owner")
		assert.Error(t, err)
	})
}

func TestUser_Lifecycle(t *testing.T) {
	u, err := NewUser(uuid.New(), "a@b.co", "A", "s3cret-pass", RoleAdmin)
	require.NoError(t, err)

	u.RecordLogin()
	assert.NotNil(t, u.LastLoginAt)

	u.Deactivate()
	assert.False(t, u.Active)
}
