package env

import "testing"

func TestGetString(t *testing.T) {
	t.Setenv("FOOLU_TEST_STRING", "hello")

	if got := GetString("FOOLU_TEST_STRING", "fallback"); got != "hello" {
		t.Errorf("GetString = %q, want %q", got, "hello")
	}
	if got := GetString("FOOLU_TEST_STRING_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetString = %q, want fallback", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("FOOLU_TEST_INT", "42")
	t.Setenv("FOOLU_TEST_INT_JUNK", "not a number")

	if got := GetInt("FOOLU_TEST_INT", 7); got != 42 {
		t.Errorf("GetInt = %d, want 42", got)
	}
	if got := GetInt("FOOLU_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("GetInt = %d, want fallback 7", got)
	}
	if got := GetInt("FOOLU_TEST_INT_JUNK", 7); got != 7 {
		t.Errorf("GetInt = %d, want fallback 7 on unparsable value", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("FOOLU_TEST_BOOL_TRUE", "true")
	t.Setenv("FOOLU_TEST_BOOL_ZERO", "0")
	t.Setenv("FOOLU_TEST_BOOL_JUNK", "maybe")

	if got := GetBool("FOOLU_TEST_BOOL_TRUE", false); !got {
		t.Error("GetBool = false, want true")
	}
	if got := GetBool("FOOLU_TEST_BOOL_ZERO", true); got {
		t.Error("GetBool = true, want false for \"0\"")
	}
	if got := GetBool("FOOLU_TEST_BOOL_UNSET", true); !got {
		t.Error("GetBool = false, want fallback true")
	}
	if got := GetBool("FOOLU_TEST_BOOL_JUNK", false); got {
		t.Error("GetBool = true, want fallback false on unparsable value")
	}
}
