package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/streamgen/digest"
	"github.com/kbukum/streamgen/errors"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "disabled"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_WritesExactLength(t *testing.T) {
	out := filepath.Join(t.TempDir(), "counter.bin")
	_, _, err := run(t, "generate", "--generator", "counter", "--bytes", "1945", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, data, 1945)
	for i, b := range data {
		if b != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, b, byte(i))
		}
	}
}

func TestGenerate_Stdout(t *testing.T) {
	stdout, _, err := run(t, "generate", "-g", "mt19937", "-n", "64", "--chunk", "7")
	require.NoError(t, err)
	assert.Len(t, stdout, 64)
}

func TestGenerate_XZWithDigest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mt.bin.xz")
	_, stderr, err := run(t, "generate", "-g", "mt19937", "-n", "20000", "-o", out, "--compress", "xz", "--digest", "sha256")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	xr, err := xz.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(xr)
	require.NoError(t, err)
	require.Len(t, data, 20000)

	ht, err := digest.NewHashThrough(digest.SHA256, nil)
	require.NoError(t, err)
	_, _ = ht.Write(data)
	assert.Contains(t, stderr, ht.Sum())
}

func TestGenerate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"unknown generator", []string{"generate", "-g", "nope", "-n", "10"}, errors.ErrCodeNotFound},
		{"zero bytes", []string{"generate", "-n", "0"}, errors.ErrCodeInvalidArgument},
		{"bad compression", []string{"generate", "-n", "10", "--compress", "zip"}, errors.ErrCodeInvalidArgument},
		{"bad digest", []string{"generate", "-n", "10", "--digest", "md5"}, errors.ErrCodeInvalidArgument},
		{"bad chunk", []string{"generate", "-n", "10", "--chunk", "-4"}, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestVerify(t *testing.T) {
	stdout, _, err := run(t, "verify", "-g", "xoroshiro128plus", "-n", "100000")
	require.NoError(t, err)

	var res digest.Result
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.Match)
	assert.Equal(t, digest.RIPEMD160, res.Algorithm)
	assert.Equal(t, int64(100000), res.Bytes)
}

func TestVerify_Expect(t *testing.T) {
	stdout, _, err := run(t, "verify", "-g", "counter", "-n", "3", "--digest", "sha256",
		"--expect", "ae4b3280e56e2faf83f414a6e3dabe9d5fbe18976544c05fed121accb85b53fc")
	require.NoError(t, err)
	assert.Contains(t, stdout, "match: true")

	_, _, err = run(t, "verify", "-g", "counter", "-n", "3", "--digest", "sha256", "--expect", "00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal))
}

func TestConfigCommand(t *testing.T) {
	stdout, _, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "chunk_ceiling:")
	assert.Contains(t, stdout, "high_water_mark: 16384")
	assert.Contains(t, stdout, "interval: 15s")
}

func TestConfigCommand_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  name: chacha20\n"), 0o644))

	stdout, _, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: chacha20")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "dev"), stdout)
}
