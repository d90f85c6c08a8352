// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type passwordPayload struct {
	Password string `validate:"required,strong_password"`
}

func TestStrongPasswordRule(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Password1", true},
		{"Abcdefg1", true},
		{"short1A", false},       // under 8 characters
		{"alllowercase1", false}, // no upper case
		{"NoDigitsHere", false},  // no number
		{"", false},
	}

	for _, tc := range cases {
		err := ValidateStruct(&passwordPayload{Password: tc.password})
		if tc.valid {
			assert.NoError(t, err, tc.password)
		} else {
			assert.Error(t, err, tc.password)
		}
	}
}

func TestGetValidationErrors(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}

	errs := GetValidationErrors(ValidateStruct(&payload{Email: "not-an-email"}))
	assert.Len(t, errs, 2)

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Message)
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["name"])

	assert.Nil(t, GetValidationErrors(nil))
}
