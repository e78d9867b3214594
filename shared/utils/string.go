package utils

import (
	"reflect"
	"strings"
)

// TrimAllStringFields returns a copy of input with every exported string
// field trimmed, recursing through pointers, structs, slices and maps.
func TrimAllStringFields(input any) any {
	if input == nil {
		return nil
	}
	return trimValue(reflect.ValueOf(input)).Interface()
}

func trimValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		newElem := trimValue(v.Elem())
		newPtr := reflect.New(newElem.Type())
		newPtr.Elem().Set(newElem)
		return newPtr

	case reflect.Struct:
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(trimValue(v.Field(i)))
			}
		}
		return newStruct

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(trimValue(v.Index(i)))
		}
		return newSlice

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		newMap := reflect.MakeMap(v.Type())
		iter := v.MapRange()
		for iter.Next() {
			newMap.SetMapIndex(trimValue(iter.Key()), trimValue(iter.Value()))
		}
		return newMap

	case reflect.String:
		return reflect.ValueOf(strings.TrimSpace(v.String())).Convert(v.Type())
	}

	return v
}

// NilIfEmpty turns blank strings into nil for nullable columns.
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
