package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pakfs/internal/common"
)

// fakeArchive serves canned content for resolution tests.
type fakeArchive struct {
	name  string
	paths []string
	data  map[string][]byte
}

func newFakeArchive(name string, files map[string]string) *fakeArchive {
	a := &fakeArchive{name: name, data: make(map[string][]byte)}
	for p, body := range files {
		p = common.NormalizePath(p)
		a.paths = append(a.paths, p)
		a.data[p] = []byte(body)
	}
	return a
}

func (a *fakeArchive) Locate(path string) (uint32, bool) {
	path = common.NormalizePath(path)
	for i, p := range a.paths {
		if p == path {
			return uint32(i), true
		}
	}
	return 0, false
}

func (a *fakeArchive) Extract(id uint32) ([]byte, error) {
	if int(id) >= len(a.paths) {
		return nil, common.ErrNotFound
	}
	return a.data[a.paths[id]], nil
}

func (a *fakeArchive) Name() string { return a.name }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, body := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0644))
	}
}

func TestResolutionPrecedence(t *testing.T) {
	m := newTestManager(t, Options{})

	vroot := t.TempDir()
	writeTree(t, vroot, map[string]string{"data/level.json": "from vdir"})
	require.NoError(t, m.AddVirtualDir(vroot, false))

	raw := t.TempDir()
	writeTree(t, raw, map[string]string{"data/level.json": "from raw"})
	rawPath := filepath.Join(raw, "data", "level.json")

	arc := newFakeArchive("patch.pak", map[string]string{"data/level.json": "from archive"})
	require.NoError(t, m.MountArchive(arc))

	// archive wins over the virtual directory
	got, err := m.LoadText("data/level.json", false)
	require.NoError(t, err)
	assert.Equal(t, "from archive", got)

	// unmounting exposes the virtual directory copy
	require.NoError(t, m.ClearArchives())
	got, err = m.LoadText("data/level.json", false)
	require.NoError(t, err)
	assert.Equal(t, "from vdir", got)

	// bypass skips both tiers and reads the raw path
	got, err = m.LoadText(rawPath, true)
	require.NoError(t, err)
	assert.Equal(t, "from raw", got)
}

func TestResolutionFallsThroughToRaw(t *testing.T) {
	m := newTestManager(t, Options{})

	vroot := t.TempDir()
	require.NoError(t, m.AddVirtualDir(vroot, false))

	raw := t.TempDir()
	writeTree(t, raw, map[string]string{"only-here.txt": "raw tier"})

	got, err := m.LoadText(filepath.Join(raw, "only-here.txt"), false)
	require.NoError(t, err)
	assert.Equal(t, "raw tier", got)
}

func TestOpenMissingIsNotFound(t *testing.T) {
	m := newTestManager(t, Options{})

	_, err := m.OpenMem("does/not/exist.bin", false)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = m.OpenDisk("does/not/exist.bin", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOpenDiskThroughVirtualDir(t *testing.T) {
	m := newTestManager(t, Options{})

	vroot := t.TempDir()
	writeTree(t, vroot, map[string]string{"models/tree.obj": "v 1 2 3"})
	require.NoError(t, m.AddVirtualDir(vroot, false))

	f, err := m.OpenDisk("models/tree.obj", false)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, KindDisk, f.Kind())
	assert.Equal(t, ModeRead, f.Mode())
	assert.Equal(t, int64(7), f.Size())
	assert.Equal(t, "models/tree.obj", f.Path())

	buf := make([]byte, 7)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "v 1 2 3", string(buf[:n]))

	// declared read intent rejects writes
	_, err = f.Write([]byte("nope"))
	assert.ErrorIs(t, err, common.ErrWriteOnly)
}

func TestCreateDiskBypassesVirtualDirs(t *testing.T) {
	m := newTestManager(t, Options{})

	vroot := t.TempDir()
	require.NoError(t, m.AddVirtualDir(vroot, false))

	out := filepath.Join(t.TempDir(), "out.bin")
	f, err := m.CreateDisk(out)
	require.NoError(t, err)

	_, err = f.Write([]byte("written"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.Size())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "written", string(data))

	// nothing landed under the virtual root
	entries, err := os.ReadDir(vroot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPoolExhaustionAndRecovery(t *testing.T) {
	m := newTestManager(t, Options{MaxMemFiles: 4})

	var open []*File
	for i := 0; i < 4; i++ {
		f, err := m.CreateMem("slot")
		require.NoError(t, err)
		open = append(open, f)
	}

	_, err := m.CreateMem("overflow")
	assert.ErrorIs(t, err, common.ErrOutOfMemory,
		"exhaustion must be distinguishable from resolution failure")

	// closing a handle frees its slot for the next open
	require.NoError(t, open[0].Close())
	f, err := m.CreateMem("recycled")
	require.NoError(t, err)

	// churn through the recycled slot; the survivors stay intact
	_, err = f.Write([]byte("fresh"))
	require.NoError(t, err)
	for _, h := range open[1:] {
		assert.True(t, h.IsOpen())
		assert.Equal(t, int64(0), h.Size())
	}

	require.NoError(t, f.Close())
	for _, h := range open[1:] {
		require.NoError(t, h.Close())
	}
}

func TestMonitoringDisabledFailsLoudly(t *testing.T) {
	m := newTestManager(t, Options{Monitoring: false})

	assert.False(t, m.MonitoringAvailable())

	err := m.RegisterWatch("a.json", func(string) {})
	assert.ErrorIs(t, err, common.ErrMonitorDisabled)

	_, err = m.UnregisterWatch("a.json")
	assert.ErrorIs(t, err, common.ErrMonitorDisabled)

	_, err = m.Poll()
	assert.ErrorIs(t, err, common.ErrMonitorDisabled)

	err = m.AddVirtualDir(t.TempDir(), true)
	assert.ErrorIs(t, err, common.ErrMonitorDisabled)
}

func TestManagerClosedRejectsOperations(t *testing.T) {
	m, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.CreateMem("late")
	assert.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = m.OpenMem("x", false)
	assert.ErrorIs(t, err, common.ErrNotInitialized)
	assert.ErrorIs(t, m.AddVirtualDir(".", false), common.ErrNotInitialized)
	assert.ErrorIs(t, m.Close(), common.ErrNotInitialized)
}

func TestAddVirtualDirValidatesRoot(t *testing.T) {
	m := newTestManager(t, Options{})

	err := m.AddVirtualDir(filepath.Join(t.TempDir(), "missing"), false)
	assert.ErrorIs(t, err, common.ErrNotFound)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err = m.AddVirtualDir(file, false)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestOpenMemRejectsWrites(t *testing.T) {
	m := newTestManager(t, Options{})

	arc := newFakeArchive("content.pak", map[string]string{"a.txt": "original"})
	require.NoError(t, m.MountArchive(arc))

	f, err := m.OpenMem("a.txt", false)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, ModeRead, f.Mode())

	n, err := f.Write([]byte("CLOBBERED"))
	assert.ErrorIs(t, err, common.ErrReadOnly)
	assert.Zero(t, n)
	assert.ErrorIs(t, f.Truncate(0), common.ErrReadOnly)

	// the declared-read handle's contents are untouched
	got := make([]byte, f.Size())
	_, err = f.Read(got)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestLoadTextFromArchive(t *testing.T) {
	m := newTestManager(t, Options{})

	arc := newFakeArchive("content.pak", map[string]string{
		"shaders/main.vs": "#version 330\n",
	})
	require.NoError(t, m.MountArchive(arc))

	got, err := m.LoadText("shaders/main.vs", false)
	require.NoError(t, err)
	assert.Equal(t, "#version 330\n", got)

	f, err := m.OpenMem("shaders/main.vs", false)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, KindMemory, f.Kind())
	assert.Equal(t, int64(13), f.Size())
}
