package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `validate:"required,email"`
	Count int    `validate:"gt=0,lte=1000"`
	Kind  string `validate:"omitempty,oneof=a b"`
}

func TestValidationError(t *testing.T) {
	err := validator.New().Struct(sample{Email: "nope", Count: 0, Kind: "c"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Count must be greater than 0")
	assert.Contains(t, resp.Error, "field Kind must be one of [a b]")
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, Response{Status: StatusOK}, OK())
	assert.Equal(t, Response{Status: StatusOK, Data: 1}, StatusOKWithData(1))
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "x"}, Error("x"))
	assert.Equal(t, Response{Status: StatusError, Error: "x", Data: true}, ErrorWithData("x", true))
}
