package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":       0,
		"lots":   0,
		"-5MB":   0,
		"512":    512,
		"512b":   512,
		"64KB":   64 << 10,
		" 10mb ": 10 << 20,
		"2GB":    2 << 30,
		"0.5KB":  512,
		"1.5MB":  int64(1.5 * (1 << 20)),
	}
	for in, want := range tests {
		if got := ParseSize(in); got != want {
			t.Errorf("ParseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Size()
}

func TestRotatingFile_KeepsMaxBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sarifsort.log")
	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}

	line := append(bytes.Repeat([]byte("x"), 29), '\n')
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if got := fileSize(t, p); got != 30 {
			t.Errorf("%s size = %d, want 30", filepath.Base(p), got)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("backup .3 should not exist, stat err = %v", err)
	}
}

func TestRotatingFile_NoBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sarifsort.log")
	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer rf.Close()

	for _, s := range []string{"first\n", "second\n"} {
		if _, err := rf.Write([]byte(s)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("content = %q, want only the last line", data)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be kept")
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := OpenRotatingFile(filepath.Join(t.TempDir(), "a.log"), 0, 1)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	_ = rf.Close()
	if _, err := rf.Write([]byte("late\n")); err == nil {
		t.Error("write after Close should fail")
	}
}

func TestNewFileLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()

	for _, maxSize := range []string{"1KB", ""} {
		path := filepath.Join(dir, "sink-"+maxSize+".log")
		logger, closer, err := NewFileLoggerWithRotation(path, slog.LevelInfo, maxSize, 1)
		if err != nil {
			t.Fatalf("maxSize %q: %v", maxSize, err)
		}
		logger.Debug("Read log", "path", "a.sarif")
		logger.Info("Stored baseline", "name", "main")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		out := string(data)
		if !strings.Contains(out, "[info] Stored baseline | name=main") {
			t.Errorf("maxSize %q: missing info record in %q", maxSize, out)
		}
		if strings.Contains(out, "Read log") {
			t.Errorf("maxSize %q: debug record should be filtered", maxSize)
		}
	}
}
