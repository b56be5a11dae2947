package follower

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func appendToFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func recvLine(t *testing.T, f *Follower) string {
	t.Helper()
	select {
	case line, ok := <-f.Lines():
		require.True(t, ok, "lines channel closed unexpectedly")
		return string(line)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func TestFollower_DeliversExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("first\nsecond\n"), 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, "first\n", recvLine(t, f))
	require.Equal(t, "second\n", recvLine(t, f))
}

func TestFollower_DeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("start\n"), 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, "start\n", recvLine(t, f))

	appendToFile(t, path, "appended\n")
	require.Equal(t, "appended\n", recvLine(t, f))
}

func TestFollower_ReassemblesLineWrittenInTwoAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)
	defer f.Close()

	appendToFile(t, path, "par")
	appendToFile(t, path, "tial\n")

	require.Equal(t, "partial\n", recvLine(t, f))
}

func TestFollower_CloseClosesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("only\n"), 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)

	require.Equal(t, "only\n", recvLine(t, f))
	require.NoError(t, f.Close())

	select {
	case _, ok := <-f.Lines():
		require.False(t, ok, "lines channel should be closed after Close")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
	require.NoError(t, f.Err())
}

func TestFollower_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}

func TestFollower_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.log"), 0)
	require.Error(t, err)
}

func TestFollower_ReportsRemovedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	f, err := New(path, 0)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, "a\n", recvLine(t, f))
	require.NoError(t, os.Remove(path))

	select {
	case _, ok := <-f.Lines():
		if ok {
			t.Fatal("expected channel close after file removal")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for removal to be noticed")
	}
	require.Error(t, f.Err())
}
