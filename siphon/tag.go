package siphon

import (
	"reflect"

	"github.com/on-the-ground/siphon_go/shared/helper"
)

// Tag identifies a change or action kind by its runtime type. Reducers and
// handlers are looked up by the tag of the value being processed.
type Tag struct {
	rt reflect.Type
}

// TagOf returns the tag of values of type T.
func TagOf[T any]() Tag {
	return Tag{rt: reflect.TypeFor[T]()}
}

// TagFor returns the tag of v's dynamic type.
func TagFor(v any) Tag {
	return Tag{rt: helper.TypeOf(v)}
}

// IsValid reports whether the tag names a type.
func (t Tag) IsValid() bool {
	return t.rt != nil
}

func (t Tag) isInterface() bool {
	return t.rt != nil && t.rt.Kind() == reflect.Interface
}

func (t Tag) String() string {
	if t.rt == nil {
		return "<nil>"
	}
	return t.rt.String()
}

// belongsTo reports whether values of type X can be carried as a T, e.g.
// whether a concrete change type implements a delegate's change interface.
func belongsTo[X, T any]() bool {
	x := reflect.TypeFor[X]()
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface {
		return x.Implements(t)
	}
	return x == t
}
