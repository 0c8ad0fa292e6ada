package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("named not-found matches sentinel", func(t *testing.T) {
		err := NotFound("Contact")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsNotFound(fmt.Errorf("load: %w", err)))
	})

	t.Run("different codes do not match", func(t *testing.T) {
		assert.False(t, errors.Is(ErrAlreadyExists, ErrNotFound))
	})

	t.Run("cause is preserved", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewDomainErrorWithCause("IMPORT_FAILED", "Import failed", cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "Import failed: boom", err.Error())
	})
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000, OrderDir: "sideways"}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 10, OrderDir: "asc"}.Normalize()
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, "asc", f.OrderDir)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateEmail(""))
	assert.NoError(t, ValidateEmail("ana@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))

	assert.Error(t, ValidateRequiredLength("INVALID_NAME", "Name", "   ", 2, 10))
	assert.Error(t, ValidateRequiredLength("INVALID_NAME", "Name", "a", 2, 10))
	assert.Error(t, ValidateRequiredLength("INVALID_NAME", "Name", "abcdefghijk", 2, 10))
	assert.NoError(t, ValidateRequiredLength("INVALID_NAME", "Name", "Ab", 2, 10))
	assert.NoError(t, ValidateLength("INVALID_NOTES", "Notes", "", 2, 10))

	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}
