package pak

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pakfs/internal/common"
)

func buildArchive(t *testing.T, mode CompressMode, files map[string]string) string {
	t.Helper()
	pakPath := filepath.Join(t.TempDir(), "test.pak")

	w, err := Create(pakPath, mode)
	require.NoError(t, err)
	for path, body := range files {
		require.NoError(t, w.Put(path, strings.NewReader(body)))
	}
	require.NoError(t, w.Close())
	return pakPath
}

func TestRoundTrip(t *testing.T) {
	files := map[string]string{
		"textures/wall.dds": strings.Repeat("pixelpixel", 2000),
		"scenes/intro.json": `{"entities": []}`,
		"empty.bin":         "",
	}

	for _, mode := range []CompressMode{CompressNone, CompressFast, CompressNormal, CompressBest} {
		t.Run(mode.String(), func(t *testing.T) {
			pakPath := buildArchive(t, mode, files)

			r, err := Open(pakPath)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, mode, r.Mode())
			assert.Len(t, r.List(), len(files))

			for path, body := range files {
				id, ok := r.Locate(path)
				require.True(t, ok, "Locate(%q)", path)

				got, err := r.Extract(id)
				require.NoError(t, err)
				assert.Equal(t, body, string(got), "round trip of %q", path)
			}
		})
	}
}

func TestLocateNormalizesPaths(t *testing.T) {
	pakPath := buildArchive(t, CompressNone, map[string]string{
		"models/crate.obj": "v 0 0 0",
	})

	r, err := Open(pakPath)
	require.NoError(t, err)
	defer r.Close()

	for _, variant := range []string{
		"models/crate.obj",
		"/models/crate.obj",
		"./models/crate.obj",
		"models//crate.obj",
	} {
		_, ok := r.Locate(variant)
		assert.True(t, ok, "Locate(%q)", variant)
	}

	_, ok := r.Locate("models/barrel.obj")
	assert.False(t, ok)
}

func TestPutDuplicatePath(t *testing.T) {
	pakPath := filepath.Join(t.TempDir(), "dup.pak")
	w, err := Create(pakPath, CompressNone)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Put("a.txt", strings.NewReader("one")))

	err = w.Put("./a.txt", strings.NewReader("two"))
	assert.ErrorIs(t, err, common.ErrExists)
	assert.Equal(t, 1, w.Count())
}

func TestPutOverlongPath(t *testing.T) {
	pakPath := filepath.Join(t.TempDir(), "long.pak")
	w, err := Create(pakPath, CompressNone)
	require.NoError(t, err)
	defer w.Close()

	long := "dir/" + strings.Repeat("x", 1<<16)
	err = w.Put(long, strings.NewReader("body"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Equal(t, 0, w.Count())

	// the longest encodable path still round-trips
	require.NoError(t, w.Put(strings.Repeat("y", 1<<16-1), strings.NewReader("ok")))
}

func TestPutEmptyPath(t *testing.T) {
	pakPath := filepath.Join(t.TempDir(), "bad.pak")
	w, err := Create(pakPath, CompressNone)
	require.NoError(t, err)
	defer w.Close()

	err = w.Put("/", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestCompressionShrinksStoredSize(t *testing.T) {
	body := strings.Repeat("abcdefgh", 4096)
	pakPath := buildArchive(t, CompressBest, map[string]string{"big.txt": body})

	r, err := Open(pakPath)
	require.NoError(t, err)
	defer r.Close()

	id, ok := r.Locate("big.txt")
	require.True(t, ok)

	raw, stored, err := r.Stat(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(body)), raw)
	assert.Less(t, stored, raw)
}

func TestOpenRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "not.pak")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte{0xAB}, 64), 0644))

	_, err := Open(p)
	assert.ErrorIs(t, err, common.ErrBadArchive)
}

func TestOpenRejectsTruncated(t *testing.T) {
	p := filepath.Join(t.TempDir(), "short.pak")
	require.NoError(t, os.WriteFile(p, []byte{'P', 'A', 'K', '1'}, 0644))

	_, err := Open(p)
	assert.ErrorIs(t, err, common.ErrBadArchive)
}

func TestExtractUnknownID(t *testing.T) {
	pakPath := buildArchive(t, CompressNone, map[string]string{"a": "x"})

	r, err := Open(pakPath)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Extract(99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCloseTwice(t *testing.T) {
	pakPath := filepath.Join(t.TempDir(), "twice.pak")
	w, err := Create(pakPath, CompressNone)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), common.ErrInvalidHandle)
	assert.ErrorIs(t, w.Put("late", strings.NewReader("x")), common.ErrInvalidHandle)
}
