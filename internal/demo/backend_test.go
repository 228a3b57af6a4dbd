package demo_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/on-the-ground/siphon_go/internal/demo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Lookup(t *testing.T) {
	d, err := demo.NewDirectory(demo.DefaultNames)
	require.NoError(t, err)

	u, ok, err := d.Lookup("Patty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, demo.User{Name: "Patty"}, u)

	_, ok, err = d.Lookup("Mallory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectory_DuplicateNamesCollapse(t *testing.T) {
	d, err := demo.NewDirectory([]string{"Bob", "Bob"}, demo.WithLatency(0, 0))
	require.NoError(t, err)

	users, err := d.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []demo.User{{Name: "Bob"}, {Name: "Bob"}}, users)
}

func TestDirectory_GetUsersDrawsTwoKnownUsers(t *testing.T) {
	d, err := demo.NewDirectory(demo.DefaultNames, demo.WithLatency(0, 0), demo.WithSeed(7))
	require.NoError(t, err)

	users, err := d.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Contains(t, demo.DefaultNames, u.Name)
	}
}

func TestDirectory_EmptyTable(t *testing.T) {
	d, err := demo.NewDirectory(nil, demo.WithLatency(0, 0))
	require.NoError(t, err)

	_, err = d.GetUsers(context.Background())
	assert.ErrorIs(t, err, demo.ErrNoUsers)
}

func TestDirectory_GetUsersHonorsCancellation(t *testing.T) {
	d, err := demo.NewDirectory(demo.DefaultNames, demo.WithLatency(time.Hour, time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = d.GetUsers(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// flakyBackend fails the first failures calls.
type flakyBackend struct {
	failures int64
	calls    atomic.Int64
	users    []demo.User
}

var errFlaky = errors.New("flaky")

func (b *flakyBackend) GetUsers(ctx context.Context) ([]demo.User, error) {
	if b.calls.Add(1) <= b.failures {
		return nil, errFlaky
	}
	return b.users, nil
}

func TestCachedBackend_RetriesThenCaches(t *testing.T) {
	next := &flakyBackend{failures: 2, users: []demo.User{{Name: "Greg"}, {Name: "Fred"}}}
	c, err := demo.NewCachedBackend(next, time.Minute, 3, time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	users, err := c.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, next.users, users)
	assert.EqualValues(t, 3, next.calls.Load())

	users, err = c.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, next.users, users)
	assert.EqualValues(t, 3, next.calls.Load())

	c.Invalidate()
	_, err = c.GetUsers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, next.calls.Load())
}

func TestCachedBackend_GivesUpAfterAttempts(t *testing.T) {
	next := &flakyBackend{failures: 10}
	c, err := demo.NewCachedBackend(next, time.Minute, 2, time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetUsers(context.Background())
	assert.ErrorIs(t, err, errFlaky)
	assert.EqualValues(t, 2, next.calls.Load())
}
