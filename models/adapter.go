package models

import (
	"fmt"
	"reflect"

	h "github.com/microcosm-cc/avatars/helpers"
)

// AvatarHashProvider is implemented by anything that knows its own avatar
// hash. The value is used as is, it is not validated.
type AvatarHashProvider interface {
	AvatarHash() string
}

// AvatarHashAdaptable is implemented by values that can supply an
// AvatarHashProvider on request. A nil provider means the value cannot be
// adapted and falls back to its text.
type AvatarHashAdaptable interface {
	AvatarHashProvider() AvatarHashProvider
}

// GetAdaptedHash resolves v to an avatar hash. Hash providers (direct or
// adapted) give the hash, anything else is converted to text which is used
// as is when it already is a valid hash, or hashed as an email address.
// Returns "" when no hash can be derived.
func GetAdaptedHash(v interface{}) string {
	if v == nil {
		return ""
	}

	// A nil pointer is a missing value whatever its type
	if isNil(v) {
		return ""
	}

	if p, ok := v.(AvatarHashProvider); ok {
		return p.AvatarHash()
	}

	if a, ok := v.(AvatarHashAdaptable); ok {
		if p := a.AvatarHashProvider(); p != nil {
			if isNil(p) {
				return ""
			}
			return p.AvatarHash()
		}
	}

	text := textOf(v)
	if h.IsValidHash(text) {
		return text
	}
	return h.GetHash(text)
}

func isNil(v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func textOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
