package drop

import "reflect"

// isNilValue reports whether v holds a nil pointer, interface, map,
// slice, channel, or function. Used to detect the "null/absent payload"
// sentinel the spec says Push must silently drop. Non-nilable payload
// types (plain structs, numbers, strings) are never considered nil.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
