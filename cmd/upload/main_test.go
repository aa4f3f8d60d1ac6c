package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/uploader/internal/uploadtest"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func serverFlags(srv *uploadtest.Server) []string {
	cfg := srv.Endpoint()
	return []string{"--host", cfg.Host, "--port", strconv.Itoa(cfg.Port), "--prefix", cfg.PathPrefix}
}

func TestCLIUploadsFiles(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	srv := uploadtest.NewServer("/backend/upload/")
	defer srv.Close()

	first := writeFile(t, "a.txt", "alpha")
	second := writeFile(t, "b.txt", "beta")

	out, _, err := runCLI(t, append(serverFlags(srv), "--id-format", "uuid", first, second)...)
	require.NoError(t, err)

	got := srv.Received()
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Name)
	assert.Equal(t, []byte("alpha"), got[0].Data)
	assert.Equal(t, "b.txt", got[1].Name)
	assert.Len(t, got[0].RequestID, 36)
	assert.Contains(t, out, srv.URL+"/static/"+got[0].RequestID+"/a.txt")
	assert.Contains(t, out, srv.URL+"/static/"+got[1].RequestID+"/b.txt")
}

func TestCLIStrictFailureReportsDetail(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	srv := uploadtest.NewServer("/backend/upload/")
	defer srv.Close()
	srv.Reply(http.StatusInternalServerError, `{"detail":"boom"}`)

	path := writeFile(t, "a.txt", "alpha")
	_, errOut, err := runCLI(t, append(serverFlags(srv), path)...)

	assert.ErrorIs(t, err, errUploadFailed)
	assert.Contains(t, errOut, "Internal Server Error (status 500)")
	assert.Contains(t, errOut, `detail: "boom"`)
}

func TestCLIPermissivePrintsErrorBody(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	srv := uploadtest.NewServer("/backend/upload/")
	defer srv.Close()
	srv.Reply(http.StatusInternalServerError, `{"detail":"boom"}`)

	path := writeFile(t, "a.txt", "alpha")
	out, _, err := runCLI(t, append(serverFlags(srv), "--permissive", path)...)

	require.NoError(t, err)
	assert.Contains(t, out, `{"detail":"boom"}`)
}

func TestCLIMissingFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	srv := uploadtest.NewServer("/backend/upload/")
	defer srv.Close()

	_, errOut, err := runCLI(t, append(serverFlags(srv), filepath.Join(t.TempDir(), "nope.bin"))...)
	assert.ErrorIs(t, err, errUploadFailed)
	assert.Contains(t, errOut, "nope.bin")
	assert.Contains(t, errOut, "Failed to connect to server")
	assert.Empty(t, srv.Received())
}

func TestCLIRejectsInvalidConfig(t *testing.T) {
	_, _, err := runCLI(t, "--port", "70000", "file.txt")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestCLIRequiresFile(t *testing.T) {
	_, _, err := runCLI(t)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
