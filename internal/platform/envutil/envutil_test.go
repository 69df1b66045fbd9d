package envutil

import "testing"

func TestStr(t *testing.T) {
	t.Setenv("X_STR", "  value  ")
	if got := Str("X_STR", "def"); got != "value" {
		t.Fatalf("Str = %q, want trimmed value", got)
	}
	if got := Str("X_STR_MISSING", "def"); got != "def" {
		t.Fatalf("Str fallback = %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("X_INT", "42")
	if got := Int("X_INT", 7); got != 42 {
		t.Fatalf("Int = %d", got)
	}
	t.Setenv("X_INT_BAD", "forty")
	if got := Int("X_INT_BAD", 7); got != 7 {
		t.Fatalf("Int on garbage = %d, want default", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("X_FLOAT", "0.25")
	if got := Float("X_FLOAT", 1.0); got != 0.25 {
		t.Fatalf("Float = %f", got)
	}
	if got := Float("X_FLOAT_MISSING", 1.5); got != 1.5 {
		t.Fatalf("Float fallback = %f", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"0": false, "false": false, "no": false, "off": false,
	}
	for raw, want := range cases {
		t.Setenv("X_BOOL", raw)
		if got := Bool("X_BOOL", !want); got != want {
			t.Fatalf("Bool(%q) = %v, want %v", raw, got, want)
		}
	}
	if got := Bool("X_BOOL_MISSING", true); got != true {
		t.Fatal("Bool fallback broken")
	}
}
