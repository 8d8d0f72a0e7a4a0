package chainconfigs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/bgpipe/configs"
	"github.com/reusee/bgpipe/modes"
	"github.com/reusee/dscope"
)

func TestConfigsLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".bgpipe.cue"), []byte("max_contexts: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		loader configs.Loader,
	) {
		paths, err := loader.Paths()
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) == 0 || paths[0] != filepath.Join(dir, ".bgpipe.cue") {
			t.Fatalf("got %v", paths)
		}
		if n := Options(loader).MaxContexts; n != 2 {
			t.Fatalf("got %d", n)
		}
	})
}
