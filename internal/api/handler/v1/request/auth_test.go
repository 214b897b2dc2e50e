package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequestValidate(t *testing.T) {
	valid := SignupRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret123",
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid

		assert.NoError(t, req.Validate())
	})

	t.Run("missing email", func(t *testing.T) {
		req := valid
		req.Email = ""

		assert.Error(t, req.Validate())
	})

	t.Run("malformed email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"

		assert.Error(t, req.Validate())
	})

	t.Run("single letter name", func(t *testing.T) {
		req := valid
		req.Name = "A"

		assert.Error(t, req.Validate())
	})
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"secret123", true},
		{"1234abcd", true},
		{"p@ssw0rd!x", true},
		{"short1a", false},     // 7 characters
		{"lettersonly", false}, // no digit
		{"12345678", false},    // no letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, validPassword(tt.password))
		})
	}
}
