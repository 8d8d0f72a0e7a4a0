package chains

import "testing"

func TestPipe(t *testing.T) {
	fn := Pipe(
		func(x int) int { return x + 1 },
		func(x int) int { return x * 2 },
	)
	if got := fn(3); got != 8 {
		t.Fatalf("got %d", got)
	}
	if got := Pipe[string]()("foo"); got != "foo" {
		t.Fatalf("got %s", got)
	}
}
