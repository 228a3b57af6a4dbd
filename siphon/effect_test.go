package siphon_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffect_Only(t *testing.T) {
	e := siphon.Only[int, string](3)
	assert.Equal(t, 3, e.State())
	assert.False(t, e.HasActions())
	assert.Empty(t, e.Actions())
}

func TestEffect_PlusNeverAliases(t *testing.T) {
	base := siphon.Only[int, string](0).PlusAll("a", "b", "c")
	left := base.Plus("left")
	right := base.Plus("right")

	assert.Equal(t, []string{"a", "b", "c"}, base.Actions())
	assert.Equal(t, []string{"a", "b", "c", "left"}, left.Actions())
	assert.Equal(t, []string{"a", "b", "c", "right"}, right.Actions())
}

func TestEffect_ActionsIsACopy(t *testing.T) {
	e := siphon.With(1, "a")
	got := e.Actions()
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, e.Actions())
}

type screen interface{ isScreen() }

type loading struct{}

type content struct{ items int }

func (loading) isScreen() {}
func (content) isScreen() {}

func TestWhenState(t *testing.T) {
	grow := func(c content) siphon.Effect[screen, string] {
		return siphon.With[screen](content{items: c.items + 1}, "grew")
	}

	e := siphon.WhenState(screen(content{items: 1}), grow)
	assert.Equal(t, content{items: 2}, e.State())
	assert.Equal(t, []string{"grew"}, e.Actions())

	e = siphon.WhenState(screen(loading{}), grow)
	assert.Equal(t, loading{}, e.State())
	assert.False(t, e.HasActions())
}

func TestRequireState_PanicsOutsideState(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var unexpected *siphon.UnexpectedChangeError
		require.True(t, errors.As(err, &unexpected))
		assert.Equal(t, "refresh", unexpected.Change)
		assert.Contains(t, err.Error(), "siphon_test.loading")
	}()
	siphon.RequireState(screen(loading{}), "refresh", func(c content) siphon.Effect[screen, string] {
		return siphon.Only[screen, string](c)
	})
	t.Fatal("expected a panic")
}

type partialCounter struct {
	name  string
	delta int
}

func TestDispatch_FoldsPartialsAndConcatenatesActions(t *testing.T) {
	partials := []partialCounter{{"a", 1}, {"b", 10}, {"c", 100}}
	e := siphon.Dispatch(0, partials, func(p partialCounter, s int) siphon.Effect[int, string] {
		if p.delta == 10 {
			return siphon.Only[int, string](s + p.delta)
		}
		return siphon.With(s+p.delta, p.name)
	})
	assert.Equal(t, 111, e.State())
	assert.Equal(t, []string{"a", "c"}, e.Actions())

	s := siphon.DispatchStateOnly(1, partials, func(p partialCounter, s int) int {
		return s * p.delta
	})
	assert.Equal(t, 1000, s)
}
