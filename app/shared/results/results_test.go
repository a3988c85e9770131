package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](7)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.Equal(t, 7, *ok.Success)

	failed := FailureResult[int, error](errors.New("boom"))
	assert.False(t, failed.IsSuccess())
	assert.True(t, failed.IsFailure())
	assert.EqualError(t, *failed.Failure, "boom")

	var zero OperationResult[int, error]
	assert.False(t, zero.IsSuccess())
	assert.False(t, zero.IsFailure())
}
