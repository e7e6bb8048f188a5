package apperrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelOfItsKind(t *testing.T) {
	err := New(KindEmptyResponse, "empty API response")

	assert.True(t, errors.Is(err, ErrEmptyResponse))
	assert.False(t, errors.Is(err, ErrBadFormat))
	assert.Equal(t, "empty API response", err.Error())
}

func TestXMLErrorKeepsCauseAndDiagnostic(t *testing.T) {
	diag := XMLDiagnostic{Line: 3, Column: 14, Message: "unexpected EOF"}
	err := NewXML("failed to decode feed response", io.ErrUnexpectedEOF, diag)

	assert.True(t, errors.Is(err, ErrXML))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, diag, err.Diagnostic)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestKindOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("failed to get rate: %w", Newf(KindInvalidInput, "invalid date: %s", "x"))

	assert.Equal(t, KindInvalidInput, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "RateNotYetAnnounced", KindRateNotYetAnnounced.String())
}
