package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := Persistence("insert failed", stderrors.New("connection reset"))
	err := Wrapf(base, "save registration %s", "1234567")

	assert.Equal(t, CodePersistence, GetCode(err))
	assert.True(t, HasCode(err, CodePersistence))
	assert.Equal(t, "save registration 1234567", UserMessage(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, stderrors.Is(err, base))
}

func TestWrapForeignError(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("Please fill in all fields.", map[string]string{
		"student_id": "FDU Student ID must be exactly 7 digits.",
		"email":      "Please use your FDU email address.",
	})
	wrapped := Wrap(err, "registration rejected")

	assert.Equal(t, CodeValidationError, GetCode(wrapped))
	assert.Len(t, FieldErrors(wrapped), 2)
	assert.Equal(t, "Please fill in all fields. (email: Please use your FDU email address.; student_id: FDU Student ID must be exactly 7 digits.)", err.Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad row"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "bad row", UserMessage(err))
	assert.Nil(t, WithCode(CodeInvalidInput, nil))
}
