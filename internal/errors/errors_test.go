package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesKindAndSeverity(t *testing.T) {
	e := New(ErrCodeEmptyQuery, "query must not be empty", nil)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, SeverityError, e.Severity)
	assert.False(t, e.Retryable)
}

func TestNewFatalSeverity(t *testing.T) {
	e := New(ErrCodeIndexInconsistent, "bm25 and dense ids diverge", nil)
	assert.Equal(t, KindIndex, e.Kind)
	assert.Equal(t, SeverityFatal, e.Severity)
}

func TestNewRetryableModelError(t *testing.T) {
	e := New(ErrCodeModelUnavailable, "embedding model not ready", nil)
	assert.Equal(t, KindModel, e.Kind)
	assert.True(t, e.Retryable)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodePDFOpenFailed, nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(ErrCodePDFOpenFailed, cause)
	require.NotNil(t, e)
	assert.Equal(t, cause, e.Cause)
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, KindExtraction, e.Kind)
}

func TestErrorStringIncludesCode(t *testing.T) {
	e := New(ErrCodeEmptyQuery, "query must not be empty", nil)
	assert.Contains(t, e.Error(), ErrCodeEmptyQuery)
	assert.Contains(t, e.Error(), "query must not be empty")
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(ErrCodeEmptyQuery, "first", nil)
	b := New(ErrCodeEmptyQuery, "second", nil)
	c := New(ErrCodeQueryTooLong, "third", nil)
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWithDetailChains(t *testing.T) {
	e := New(ErrCodeUnknownSubject, "no such subject", nil).
		WithDetail("subject_id", "networks").
		WithDetail("attempted_op", "search")
	assert.Equal(t, "networks", e.Details["subject_id"])
	assert.Equal(t, "search", e.Details["attempted_op"])
}

func TestConstructorsSetKind(t *testing.T) {
	assert.Equal(t, KindValidation, Validation(ErrCodeEmptyQuery, "m", nil).Kind)
	assert.Equal(t, KindExtraction, Extraction(ErrCodePDFPageFailed, "m", nil).Kind)
	assert.Equal(t, KindIndex, Index(ErrCodeIndexAddFailed, "m", nil).Kind)
	assert.Equal(t, KindModel, Model(ErrCodeRerankFailed, "m", nil).Kind)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCodeModelUnavailable, "m", nil)))
	assert.False(t, IsRetryable(New(ErrCodeEmptyQuery, "m", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIsKindAndCode(t *testing.T) {
	e := New(ErrCodeEmptyDocument, "no pages extracted", nil)
	assert.True(t, IsKind(e, KindValidation))
	assert.False(t, IsKind(e, KindModel))
	assert.Equal(t, ErrCodeEmptyDocument, Code(e))
	assert.Equal(t, "", Code(errors.New("plain")))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("root cause")
	e := New(ErrCodeIndexAddFailed, "add failed", cause)
	assert.Equal(t, cause, errors.Unwrap(e))
}
