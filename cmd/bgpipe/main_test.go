package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/bgpipe/chains"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/bgpipe/modes"
	"github.com/reusee/dscope"
)

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.yaml")
	if err := os.WriteFile(path, []byte(`
input: 3
steps:
  - "lambda x: x + 1"
  - "lambda x: x * 2"
`), 0644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		newChain chains.NewChain,
		logger logs.Logger,
	) {
		buf := new(bytes.Buffer)
		if err := runFile(t.Context(), newChain, logger, path, buf); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "8\n" {
			t.Fatalf("got %q", buf.String())
		}
	})
}

func TestRunFileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")
	if err := os.WriteFile(path, []byte(`{"input": 1, "steps": ["lambda x: x + offset"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Call(func(
		newChain chains.NewChain,
		logger logs.Logger,
	) {
		if err := runFile(t.Context(), newChain, logger, path, new(bytes.Buffer)); err == nil {
			t.Fatal("should fail")
		}
	})
}
