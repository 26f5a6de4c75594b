package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJSONRoundTrips(t *testing.T) {
	e := New(ErrCodeUnknownSubject, "no such subject", nil).WithDetail("subject_id", "ctf")
	b, err := FormatJSON(e)
	require.NoError(t, err)
	assert.Contains(t, string(b), ErrCodeUnknownSubject)
	assert.Contains(t, string(b), "subject_id")
}

func TestFormatJSONWrapsPlainError(t *testing.T) {
	b, err := FormatJSON(errors.New("plain failure"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "plain failure")
}

func TestFormatJSONNil(t *testing.T) {
	b, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestLogAttrsIncludesDetails(t *testing.T) {
	e := New(ErrCodeIndexAddFailed, "add failed", errors.New("disk full")).
		WithDetail("subject_id", "linux")
	attrs := LogAttrs(e)
	assert.Equal(t, ErrCodeIndexAddFailed, attrs["error_code"])
	assert.Equal(t, "disk full", attrs["cause"])
	assert.Equal(t, "linux", attrs["detail_subject_id"])
}

func TestLogAttrsPlainError(t *testing.T) {
	attrs := LogAttrs(errors.New("plain"))
	assert.Equal(t, "plain", attrs["error"])
}
