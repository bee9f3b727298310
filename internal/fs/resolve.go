package fs

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"pakfs/internal/common"
	"pakfs/internal/util"
)

// resolveContent resolves a logical path to file contents for memory-backed
// opens. Tiers, in order: mounted archives (mount order), virtual
// directories (registration order), the raw path. Archives win over loose
// files so packaged content can override a stale tree; virtual directories
// win over the raw path so a mounted root shadows accidental collisions with
// the working directory. bypass skips straight to the raw path.
func (m *Manager) resolveContent(path string, bypass bool) ([]byte, string, error) {
	logical := common.NormalizePath(path)

	if !bypass {
		m.mu.Lock()
		archives := make([]Archive, len(m.archives))
		copy(archives, m.archives)
		m.mu.Unlock()

		for _, a := range archives {
			id, ok := a.Locate(logical)
			if !ok {
				continue
			}
			data, err := a.Extract(id)
			if err != nil {
				return nil, "", fmt.Errorf("extracting %q from %q: %w", logical, a.Name(), err)
			}
			return data, fmt.Sprintf("archive %q", a.Name()), nil
		}
	}

	resolved, err := m.resolvePath(path, bypass)
	if err != nil {
		return nil, "", err
	}
	ctx := context.Background()
	data, err := util.RetryWithResult(ctx, func() ([]byte, error) {
		return os.ReadFile(resolved)
	}, util.TransientFSRetryOptions(ctx)...)
	if err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", resolved, common.ErrIO)
	}
	return data, fmt.Sprintf("disk %q", resolved), nil
}

// resolvePath resolves a logical path to an on-disk path: virtual
// directories in registration order, then the raw path. Archive entries
// have no on-disk form, so disk-backed opens never consult them.
func (m *Manager) resolvePath(path string, bypass bool) (string, error) {
	logical := common.NormalizePath(path)

	if !bypass {
		m.mu.Lock()
		dirs := make([]*vdir, len(m.vdirs))
		copy(dirs, m.vdirs)
		m.mu.Unlock()

		for _, d := range dirs {
			candidate := common.JoinRoot(d.root, logical)
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				log.Tracef("[Manager %s] %q resolved under %q", m.id, logical, d.root)
				return candidate, nil
			}
		}
	}

	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path, nil
	}
	return "", fmt.Errorf("%q: %w", path, common.ErrNotFound)
}
