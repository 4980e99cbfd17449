package models

import (
	"testing"

	h "github.com/microcosm-cc/avatars/helpers"
)

type providerType struct {
	hash string
}

func (p providerType) AvatarHash() string { return p.hash }

// String would hash to something else entirely
func (p providerType) String() string { return "someone@example.com" }

type adaptableType struct {
	provider AvatarHashProvider
}

func (a adaptableType) AvatarHashProvider() AvatarHashProvider { return a.provider }

func (a adaptableType) String() string { return "fallback@example.com" }

type emailType struct {
	email string
}

func (m emailType) String() string { return m.email }

func TestGetAdaptedHashProvider(t *testing.T) {
	// Provider values are used verbatim, even when not a valid hash
	for _, hash := range []string{h.GetHash("a@b.com"), "not-a-hash", ""} {
		result := GetAdaptedHash(providerType{hash: hash})
		if result != hash {
			t.Errorf("GetAdaptedHash(provider %q) = %q", hash, result)
		}
	}
}

func TestGetAdaptedHashAdaptable(t *testing.T) {
	hash := h.GetHash("a@b.com")

	result := GetAdaptedHash(adaptableType{provider: providerType{hash: hash}})
	if result != hash {
		t.Errorf("GetAdaptedHash(adaptable) = %q should be %q", result, hash)
	}

	// No provider on offer, fall back to the text
	result = GetAdaptedHash(adaptableType{})
	expected := h.GetHash("fallback@example.com")
	if result != expected {
		t.Errorf("GetAdaptedHash(adaptable without provider) = %q should be %q", result, expected)
	}
}

func TestGetAdaptedHashFallback(t *testing.T) {
	hash := h.GetHash("a@b.com")

	if result := GetAdaptedHash(nil); result != "" {
		t.Errorf("GetAdaptedHash(nil) = %q should be empty", result)
	}

	if result := GetAdaptedHash(hash); result != hash {
		t.Errorf("GetAdaptedHash(hash) = %q should be %q", result, hash)
	}

	if result := GetAdaptedHash(" A@B.com "); result != hash {
		t.Errorf("GetAdaptedHash(email) = %q should be %q", result, hash)
	}

	if result := GetAdaptedHash(emailType{email: "A@b.com"}); result != hash {
		t.Errorf("GetAdaptedHash(stringer) = %q should be %q", result, hash)
	}

	s := "a@b.com"
	if result := GetAdaptedHash(&s); result != hash {
		t.Errorf("GetAdaptedHash(*string) = %q should be %q", result, hash)
	}

	if result := GetAdaptedHash(""); result != "" {
		t.Errorf("GetAdaptedHash(\"\") = %q should be empty", result)
	}

	expected := h.GetHash("42")
	if result := GetAdaptedHash(42); result != expected {
		t.Errorf("GetAdaptedHash(42) = %q should be %q", result, expected)
	}
}

type userType struct {
	hash string
}

func (u *userType) AvatarHash() string { return u.hash }

func TestGetAdaptedHashNilPointer(t *testing.T) {
	var u *userType
	if result := GetAdaptedHash(u); result != "" {
		t.Errorf("GetAdaptedHash(nil *userType) = %q should be empty", result)
	}

	var p AvatarHashProvider = u
	if result := GetAdaptedHash(adaptableType{provider: p}); result != "" {
		t.Errorf("GetAdaptedHash(adaptable with nil *userType) = %q should be empty", result)
	}

	hash := h.GetHash("a@b.com")
	if result := GetAdaptedHash(&userType{hash: hash}); result != hash {
		t.Errorf("GetAdaptedHash(*userType) = %q should be %q", result, hash)
	}
}
