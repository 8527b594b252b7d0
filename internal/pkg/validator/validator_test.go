package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("1042"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("10a"))
	assert.False(t, IsNumeric("-5"))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2025-03-10"))
	assert.False(t, IsValidDate("10.03.2025"))
	assert.False(t, IsValidDate("2025-13-01"))
}

func TestIsValidHost(t *testing.T) {
	assert.True(t, IsValidHost("192.168.1.64"))
	assert.True(t, IsValidHost("turnstile-01.plant.local"))
	assert.False(t, IsValidHost("http://192.168.1.64"))
	assert.False(t, IsValidHost(""))
	assert.False(t, IsValidHost("host with spaces"))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "name is required"},
		{Field: "host", Message: "invalid host"},
	}

	assert.Equal(t, "name: name is required; host: invalid host", errs.Error())
	assert.Equal(t, map[string]string{
		"name": "name is required",
		"host": "invalid host",
	}, errs.ToMap())
}
