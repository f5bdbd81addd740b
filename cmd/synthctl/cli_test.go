package main

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureOutput redirects os.Stdout/os.Stderr for the duration of fn and
// returns everything written to either. The subcommand handlers below
// write straight to os.Stdout/Stderr rather than through an injectable
// io.Writer, so tests have to capture output via a pipe swap.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

func writeTempCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := t.TempDir() + "/catalog.cat"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing temp catalog: %v", err)
	}
	return path
}
