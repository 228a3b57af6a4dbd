package siphon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ x, y int }

type roster struct{ names []string }

type shape interface{ area() int }

func (p point) area() int { return p.x * p.y }

func TestSameState(t *testing.T) {
	p := &point{1, 2}
	m := map[string]int{"a": 1}

	assert.True(t, sameState(1, 1))
	assert.False(t, sameState(1, 2))
	assert.True(t, sameState(point{1, 2}, point{1, 2}))
	assert.True(t, sameState(p, p))
	assert.False(t, sameState(p, &point{1, 2}))
	assert.True(t, sameState(m, m))
	assert.False(t, sameState(m, map[string]int{"a": 1}))
	assert.False(t, sameState(roster{}, roster{}))
	assert.False(t, sameState([]int{1}, []int{1}))

	assert.True(t, sameState[shape](point{1, 1}, point{1, 1}))
	assert.False(t, sameState[shape](point{1, 1}, point{2, 1}))
	assert.True(t, sameState[shape](nil, nil))
	assert.False(t, sameState[shape](nil, point{}))
}

type badge struct {
	label string
	at    *point
}

func TestSameState_ShallowEquality(t *testing.T) {
	p := &point{1, 2}

	assert.True(t, sameState(badge{label: "a" + "b", at: p}, badge{label: "ab", at: p}))
	assert.False(t, sameState(badge{label: "ab", at: p}, badge{label: "ab", at: &point{1, 2}}))
}

func TestTagOf(t *testing.T) {
	assert.Equal(t, TagOf[point](), TagFor(point{}))
	assert.NotEqual(t, TagOf[point](), TagFor(&point{}))
	assert.Equal(t, "siphon.point", TagOf[point]().String())
	assert.True(t, TagOf[shape]().isInterface())
	assert.False(t, TagFor(nil).IsValid())

	assert.True(t, belongsTo[point, shape]())
	assert.True(t, belongsTo[point, point]())
	assert.False(t, belongsTo[roster, shape]())
}
