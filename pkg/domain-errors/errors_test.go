package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to append audit record")

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeInternal))
	assert.Equal(t, "failed to append audit record: connection refused", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(CodeManifestInvalid, "label 'X' is not a HVAC_Zone")
	outer := Wrap(inner, CodeInternal, "register failed")

	assert.False(t, Is(outer, CodeManifestInvalid))
	assert.True(t, HasCode(outer, CodeManifestInvalid))
	assert.True(t, HasCode(fmt.Errorf("ctx: %w", inner), CodeManifestInvalid))
	assert.False(t, HasCode(errors.New("plain"), CodeManifestInvalid))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeForbidden:       http.StatusForbidden,
		CodeUnknownPoint:    http.StatusNotFound,
		CodeRateLimited:     http.StatusTooManyRequests,
		CodePolicyRejected:  http.StatusBadRequest,
		CodeManifestInvalid: http.StatusBadRequest,
		CodeInternal:        http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
