package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if n := FirstNonZero(0, 0, 3, 4); n != 3 {
		t.Fatalf("got %v", n)
	}
	if s := FirstNonZero("", ""); s != "" {
		t.Fatalf("got %q", s)
	}
}

func TestStrToBool(t *testing.T) {
	for _, str := range []string{"true", "T", "yes", "Y", "on", "1", " true "} {
		if !StrToBool(str) {
			t.Fatalf("%q should be true", str)
		}
	}
	for _, str := range []string{"false", "no", "0", "", "foo"} {
		if StrToBool(str) {
			t.Fatalf("%q should be false", str)
		}
	}
}
