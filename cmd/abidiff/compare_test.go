package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const oldCorpusJSON = `{
  "soname": "libfoo.so.1",
  "architecture": "x86_64",
  "functions": [
    {"name": "do_work", "symbol": "do_work", "return_type": "int"},
    {"name": "keep_me", "symbol": "keep_me", "return_type": "int"}
  ]
}`

const newCorpusJSON = `{
  "soname": "libfoo.so.1",
  "architecture": "x86_64",
  "functions": [
    {"name": "new_work", "symbol": "new_work", "return_type": "int"},
    {"name": "keep_me", "symbol": "keep_me", "return_type": "int"}
  ]
}`

func writeTempCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestRunCompareWritesTextReport(t *testing.T) {
	oldPath := writeTempCorpus(t, "old.json", oldCorpusJSON)
	newPath := writeTempCorpus(t, "new.json", newCorpusJSON)
	outPath := filepath.Join(t.TempDir(), "report.txt")

	rootCmd.SetArgs([]string{"compare", oldPath, newPath, "-o", outPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !bytes.Contains(out, []byte("Functions changes summary:")) {
		t.Fatalf("report missing summary line: %s", out)
	}
}

func TestRunCompareRejectsUnknownFormat(t *testing.T) {
	oldPath := writeTempCorpus(t, "old.json", oldCorpusJSON)
	newPath := writeTempCorpus(t, "new.json", newCorpusJSON)

	rootCmd.SetArgs([]string{"compare", oldPath, newPath, "--format", "bogus"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
