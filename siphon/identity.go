package siphon

import "reflect"

// sameState decides whether a reduction produced nothing new. Reference
// kinds compare by identity. Comparable values compare with a shallow ==:
// strings by content, pointer fields by address, so a copied struct holding
// the same field values is not new. Anything else (slices, funcs, structs
// holding them) always counts as new.
func sameState[S any](prev, next S) bool {
	pv, nv := reflect.ValueOf(&prev).Elem(), reflect.ValueOf(&next).Elem()
	if pv.Kind() == reflect.Interface {
		if pv.IsNil() || nv.IsNil() {
			return pv.IsNil() && nv.IsNil()
		}
		pv, nv = pv.Elem(), nv.Elem()
		if pv.Type() != nv.Type() {
			return false
		}
	}
	switch pv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return pv.UnsafePointer() == nv.UnsafePointer()
	}
	if !pv.Comparable() || !nv.Comparable() {
		return false
	}
	return pv.Equal(nv)
}
