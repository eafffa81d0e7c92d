package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePersonNotFound, "no person with ID %s", "@I42@")

	if err.Code != ErrCodePersonNotFound {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodePersonNotFound)
	}
	if err.Message != "no person with ID @I42@" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Error("New should not set a cause")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("unexpected tag")
	err := Wrap(ErrCodeInvalidGedcom, cause, "decode %s", "family.ged")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if got := err.Error(); got != "INVALID_GEDCOM: decode family.ged: unexpected tag" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeEmptyTree, "no individuals in input")

	if !Is(err, ErrCodeEmptyTree) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodePersonNotFound) {
		t.Error("Is should not match a different code")
	}

	// Wrapped in a plain error, the code should still be found.
	wrapped := fmt.Errorf("canvas: %w", err)
	if !Is(wrapped, ErrCodeEmptyTree) {
		t.Error("Is should unwrap plain error chains")
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(New(ErrCodeInvalidSelector, "bad index")); code != ErrCodeInvalidSelector {
		t.Errorf("GetCode = %s", code)
	}
	if code := GetCode(stderrors.New("plain")); code != "" {
		t.Errorf("GetCode on plain error = %s, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePersonNotFound, "no person with ID @I9@")
	if msg := UserMessage(err); msg != "no person with ID @I9@" {
		t.Errorf("UserMessage = %q", msg)
	}
	if msg := UserMessage(stderrors.New("plain")); msg != "plain" {
		t.Errorf("UserMessage on plain error = %q", msg)
	}
}

func TestValidateNoteFilename(t *testing.T) {
	valid := []string{
		"Kucera Alexander 1975",
		"Smith Mary",
		"Müller Hans 1899",
	}
	for _, name := range valid {
		if err := ValidateNoteFilename(name); err != nil {
			t.Errorf("ValidateNoteFilename(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"../escape",
		"a/b",
		"back\\slash",
		"null\x00byte",
	}
	for _, name := range invalid {
		if err := ValidateNoteFilename(name); err == nil {
			t.Errorf("ValidateNoteFilename(%q) = nil, want error", name)
		}
	}
}

func TestSanitizeNoteFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Smith/Jones Mary", "Smith Jones Mary"},
		{"O'Brien  Sean", "O'Brien Sean"},
		{"tab\there", "tab here"},
	}
	for _, c := range cases {
		if got := SanitizeNoteFilename(c.in); got != c.want {
			t.Errorf("SanitizeNoteFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
