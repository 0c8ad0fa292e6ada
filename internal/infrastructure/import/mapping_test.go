package dataimport

import (
	"testing"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"First Name", "firstname"},
		{"first_name", "firstname"},
		{"  FIRST-NAME ", "firstname"},
		{"Prénom", "prenom"},
		{"E-Mail", "email"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), tt.in)
	}
}

func TestSuggestMapping(t *testing.T) {
	fields := MustFields(bulk.EntityContacts)

	t.Run("Names, labels and aliases", func(t *testing.T) {
		headers := []string{"First Name", "Surname", "E-mail Address", "Organisation", "Favourite Colour"}
		m := SuggestMapping(fields, headers)
		assert.Equal(t, Mapping{
			"First Name":       "first_name",
			"Surname":          "last_name",
			"E-mail Address":   "email",
			"Organisation":     "company",
			"Favourite Colour": "",
		}, m)
	})

	t.Run("Exact match beats alias", func(t *testing.T) {
		// "title" is a job_title alias, "job title" its label
		m := SuggestMapping(fields, []string{"Title", "Job Title"})
		assert.Equal(t, "job_title", m["Job Title"])
		assert.Equal(t, "", m["Title"])
	})

	t.Run("A field is claimed once", func(t *testing.T) {
		m := SuggestMapping(fields, []string{"email", "Email"})
		assert.Equal(t, "email", m["email"])
		assert.Equal(t, "", m["Email"])
	})
}

func TestValidateMapping(t *testing.T) {
	fields := MustFields(bulk.EntityContacts)
	headers := []string{"first", "last", "mail", "mail2"}

	t.Run("Valid", func(t *testing.T) {
		err := ValidateMapping(fields, headers, Mapping{"first": "first_name", "last": "last_name", "mail": "email", "mail2": ""})
		assert.NoError(t, err)
	})

	t.Run("Required field missing", func(t *testing.T) {
		err := ValidateMapping(fields, headers, Mapping{"first": "first_name"})
		require.ErrorIs(t, err, ErrInvalidMapping)
		assert.Contains(t, err.Error(), `required field "last_name" is not mapped`)
	})

	t.Run("Target mapped twice", func(t *testing.T) {
		err := ValidateMapping(fields, headers, Mapping{"first": "first_name", "last": "last_name", "mail": "email", "mail2": "email"})
		require.ErrorIs(t, err, ErrInvalidMapping)
		assert.Contains(t, err.Error(), "mail, mail2")
	})

	t.Run("Unknown column and field", func(t *testing.T) {
		err := ValidateMapping(fields, headers, Mapping{"first": "first_name", "last": "last_name", "nope": "email", "mail": "favourite"})
		require.ErrorIs(t, err, ErrInvalidMapping)
		assert.Contains(t, err.Error(), `column "nope" is not in the file`)
		assert.Contains(t, err.Error(), `field "favourite" does not exist`)
	})
}

func TestParseMappingPairs(t *testing.T) {
	m, err := ParseMappingPairs([]string{"Full Name = name", "Skip="})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"Full Name": "name", "Skip": ""}, m)

	_, err = ParseMappingPairs([]string{"nonsense"})
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestFields(t *testing.T) {
	for _, entity := range bulk.EntityTypes {
		fields, err := Fields(entity)
		require.NoError(t, err)
		assert.NotEmpty(t, fields)

		names := map[string]bool{}
		for _, f := range fields {
			assert.False(t, names[f.Name], "duplicate field %s.%s", entity, f.Name)
			names[f.Name] = true
			if f.Type == FieldTypeEnum {
				assert.NotEmpty(t, f.Enum, f.Name)
			}
		}
	}

	_, err := Fields("widgets")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}
