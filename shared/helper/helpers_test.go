package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/stretchr/testify/assert"
)

type ping struct{}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "helper_test.ping", helper.TypeName(ping{}))
	assert.Equal(t, "*helper_test.ping", helper.TypeName(&ping{}))
	assert.Equal(t, "<nil>", helper.TypeName(nil))
}

func TestCast(t *testing.T) {
	v, ok := helper.Cast[int](any(3))
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = helper.Cast[string](any(3))
	assert.False(t, ok)
}

func TestRetry(t *testing.T) {
	calls := 0
	err := helper.Retry(3, 0, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = helper.Retry(2, 0, func() error {
		calls++
		return errors.New("permanent")
	})
	assert.ErrorIs(t, err, helper.ErrMaxAttempts)
	assert.Equal(t, 2, calls)
}
