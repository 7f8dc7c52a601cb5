package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSealVerify(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "meet at the old mill")

	if code, _, stderr := runCmd("seal", "-key", testKey, path); code != exitOK {
		t.Fatalf("seal exit %d: %s", code, stderr)
	}
	sealedPath := path + ".sealed"

	code, stdout, _ := runCmd("verify", "-key", testKey, sealedPath)
	if code != exitOK || !strings.Contains(stdout, "intact") {
		t.Fatalf("verify exit %d, output %q", code, stdout)
	}

	sealed, err := os.ReadFile(sealedPath)
	if err != nil {
		t.Fatalf("read sealed: %v", err)
	}
	sealed[3] ^= 0x01
	if err := os.WriteFile(sealedPath, sealed, 0o644); err != nil {
		t.Fatalf("write sealed: %v", err)
	}

	code, stdout, _ = runCmd("verify", "-key", testKey, sealedPath)
	if code != exitModified || !strings.Contains(stdout, "modified") {
		t.Fatalf("tampered verify exit %d, output %q", code, stdout)
	}
}

func TestSealGeneratesKey(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	code, stdout, stderr := runCmd("seal", path)
	if code != exitOK {
		t.Fatalf("seal exit %d: %s", code, stderr)
	}
	var key string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasPrefix(line, "key: ") {
			key = strings.TrimPrefix(line, "key: ")
		}
	}
	if len(key) != 32 {
		t.Fatalf("no generated key in output %q", stdout)
	}

	if code, _, _ := runCmd("verify", "-key", key, path+".sealed"); code != exitOK {
		t.Fatalf("verify with generated key exit %d", code)
	}
}

func TestPassphraseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "diary.txt", "dear diary")
	const salt = "a0a1a2a3a4a5a6a7a8a9aaabacadaeaf"

	args := []string{"-passphrase", "hunter2", "-salt", salt, "-iterations", "1000"}
	if code, _, stderr := runCmd(append(append([]string{"encrypt", "-mode", "OFB"}, args...), path)...); code != exitOK {
		t.Fatalf("encrypt exit %d: %s", code, stderr)
	}

	out := filepath.Join(dir, "diary.out")
	decryptArgs := append(append([]string{"decrypt", "-mode", "OFB", "-out", out}, args...), path+".enc")
	if code, _, stderr := runCmd(decryptArgs...); code != exitOK {
		t.Fatalf("decrypt exit %d: %s", code, stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "dear diary" {
		t.Fatalf("round trip = %q", got)
	}
}

func TestEncryptDecryptDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.txt", "step one: profit")

	if code, _, stderr := runCmd("encrypt", "-key", testKey, path); code != exitOK {
		t.Fatalf("encrypt exit %d: %s", code, stderr)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if code, _, stderr := runCmd("decrypt", "-key", testKey, path+".enc"); code != exitOK {
		t.Fatalf("decrypt exit %d: %s", code, stderr)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "step one: profit" {
		t.Fatalf("decrypted %q, %v", got, err)
	}
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "short.sealed", "too short")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"shred", path}},
		{"missing file arg", []string{"verify", "-key", testKey}},
		{"verify needs key", []string{"verify", path}},
		{"verify passphrase needs salt", []string{"verify", "-passphrase", "p", path}},
		{"malformed sealed file", []string{"verify", "-key", testKey, path}},
		{"bad key", []string{"seal", "-key", "abcd", path}},
		{"key and passphrase", []string{"seal", "-key", testKey, "-passphrase", "p", path}},
		{"bad mode", []string{"encrypt", "-mode", "GCM", "-key", testKey, path}},
		{"missing input", []string{"seal", "-key", testKey, filepath.Join(dir, "nope")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if code, _, _ := runCmd(tc.args...); code != exitError {
				t.Fatalf("exit %d, want %d", code, exitError)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in      string
		encrypt bool
		want    string
	}{
		{"a.txt", true, "a.txt.enc"},
		{"a.txt.enc", false, "a.txt"},
		{"a.bin", false, "a.bin.dec"},
	}
	for _, tc := range tests {
		if got := outputPath(tc.in, tc.encrypt); got != tc.want {
			t.Errorf("outputPath(%q, %v) = %q, want %q", tc.in, tc.encrypt, got, tc.want)
		}
	}
}
