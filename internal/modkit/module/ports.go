package module

import (
	"fmt"
	"reflect"
)

// PortsOf finds T in m.Ports(): either the bundle itself or one of its exported fields
func PortsOf[T any](m Module) (T, bool) {
	return find[T](m.Ports())
}

// MustPortsOf panics when m has no T
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	var zero T
	panic(fmt.Sprintf("module %s has no %T port", m.Name(), &zero))
}

func find[T any](ports any) (T, bool) {
	if v, ok := ports.(T); ok {
		return v, true
	}
	var zero T
	rv := reflect.ValueOf(ports)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}
