package helpers

import (
	"strings"
	"testing"
)

func TestGetHash(t *testing.T) {
	message := "GetHash(%q) = %q should be %q"

	email := "a@b.com"
	correctValue := "fb98d44ad7501a959f3f4f4a3f004fe2d9e581ea6207e218c4b02c08a4d75adf"
	result := GetHash(email)
	if result != correctValue {
		t.Errorf(message, email, result, correctValue)
	}

	for _, email := range []string{"A@B.com", " a@b.com ", "\tA@B.COM\n"} {
		result = GetHash(email)
		if result != correctValue {
			t.Errorf(message, email, result, correctValue)
		}
	}

	email = "Test@Example.com"
	correctValue = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"
	result = GetHash(email)
	if result != correctValue {
		t.Errorf(message, email, result, correctValue)
	}

	// é is a single byte (0xE9) in Windows-1252
	email = "JOSÉ@example.com"
	correctValue = "9deffa1ba39b4fbeb0df6b94938df52c9c46af47262fbefdbbc375dbd98ef5b7"
	result = GetHash(email)
	if result != correctValue {
		t.Errorf(message, email, result, correctValue)
	}

	for _, email := range []string{"", "   ", "\t\n"} {
		result = GetHash(email)
		if result != "" {
			t.Errorf(message, email, result, "")
		}
	}
}

func TestDigestKeepsLeadingZeros(t *testing.T) {
	// SHA-256 of this address starts with a 0x00 byte
	value := "user73@example.com"
	expected := "00b340221ad566a1400936daadce44a7c61b5b04505fc66d3d55d96bde434bc1"

	result, err := Digest(value)
	if err != nil {
		t.Fatalf("Digest(%q) returned error %+v", value, err)
	}
	if result != expected {
		t.Errorf("Digest(%q) = %q should be %q", value, result, expected)
	}

	for _, v := range []string{"", "x", "user73@example.com", strings.Repeat("z", 500)} {
		result, err := Digest(v)
		if err != nil {
			t.Fatalf("Digest(%q) returned error %+v", v, err)
		}
		if len(result) != HashLength {
			t.Errorf("len(Digest(%q)) = %d should be %d", v, len(result), HashLength)
		}
		if !IsValidHash(result) {
			t.Errorf("Digest(%q) = %q is not a valid hash", v, result)
		}
	}
}

func TestIsValidHash(t *testing.T) {
	valid := "fb98d44ad7501a959f3f4f4a3f004fe2d9e581ea6207e218c4b02c08a4d75adf"

	tests := map[string]bool{
		valid:                        true,
		strings.Repeat("0", 64):      true,
		strings.Repeat("f", 64):      true,
		"":                           false,
		valid[:63]:                   false,
		valid + "0":                  false,
		"F" + valid[1:]:              false,
		valid[:63] + "g":             false,
		" " + valid[1:]:              false,
		"fb98d44ad7501a959f3f4f4a3f": false,
		strings.Repeat("é", 32):      false,
	}

	for s, expected := range tests {
		if IsValidHash(s) != expected {
			t.Errorf("IsValidHash(%q) = %t should be %t", s, !expected, expected)
		}
	}
}

func TestNormaliseEmail(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"  ":              "",
		"A@B.com":         "a@b.com",
		" Foo@Bar.ORG  ":  "foo@bar.org",
		"\ta@b.com\r\n":   "a@b.com",
		"\x00a@b.com\x1f": "a@b.com",
		"\u00a0a@b.com":   "\u00a0a@b.com",
		"a@b.com\u0085":   "a@b.com\u0085",
	}

	for in, expected := range tests {
		out := NormaliseEmail(in)
		if out != expected {
			t.Errorf("NormaliseEmail(%q) = %q should be %q", in, out, expected)
		}
	}
}
