package validate

import (
	"strings"
	"testing"
)

func TestRequired(t *testing.T) {
	v := Required()

	if err := v("value"); err != nil {
		t.Errorf("Required on non-empty = %v, want nil", err)
	}
	if err := v(""); err == nil {
		t.Error("Required on empty should fail")
	}
	if err := v("   "); err == nil {
		t.Error("Required on whitespace should fail")
	}
}

func TestMaxLength(t *testing.T) {
	v := MaxLength(5)

	if err := v("12345"); err != nil {
		t.Errorf("MaxLength at limit = %v, want nil", err)
	}
	if err := v("123456"); err == nil {
		t.Error("MaxLength past limit should fail")
	}
}

func TestVideoID(t *testing.T) {
	v := VideoID()

	valid := []string{"dQw4w9WgXcQ", "abc-123_XYZ", "a"}
	for _, id := range valid {
		if err := v(id); err != nil {
			t.Errorf("VideoID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"has space", "semi;colon", "slash/", "query?x=1"}
	for _, id := range invalid {
		if err := v(id); err == nil {
			t.Errorf("VideoID(%q) should fail", id)
		}
	}
}

func TestField_LabelsErrors(t *testing.T) {
	v := Field("videoId", Required(), MaxLength(4))

	err := v("")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "videoId") {
		t.Errorf("error %q should name the field", err.Error())
	}

	if err := v("abcd"); err != nil {
		t.Errorf("valid value = %v, want nil", err)
	}
	if err := v("abcde"); err == nil {
		t.Error("value past MaxLength should fail")
	}
}
