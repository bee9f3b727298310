package monitor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"

	"pakfs/internal/util"
)

// Watcher bridges OS directory notifications into per-directory change
// buffers. It owns one fsnotify instance shared by every watched root and
// maintains recursive coverage by attaching to subdirectories as they appear.
//
// The event loop only ever appends to buffers; all dispatching happens on
// the host's poll thread.
type Watcher struct {
	w    *fsnotify.Watcher
	mu   sync.Mutex
	done chan struct{}

	// watched roots, longest path first so nested roots resolve correctly
	targets []*target
}

type target struct {
	root   string // absolute, cleaned
	buf    *Buffer
	ignore *ignore.GitIgnore // nil when no patterns configured

	// every directory attached for this root, so Unwatch can release the
	// kernel handles of subdirectories too (guarded by Watcher.mu)
	watched []string
}

// NewWatcher creates the watcher and starts its event loop.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{w: w, done: make(chan struct{})}
	go fw.loop()
	return fw, nil
}

// Watch attaches buf to root (recursively) so externally-modified files
// under it show up in the buffer as slash-separated paths relative to root.
// ignores are gitignore-style patterns filtering out noise like editor swap
// files.
func (fw *Watcher) Watch(root string, buf *Buffer, ignores []string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)

	t := &target{root: abs, buf: buf}
	if len(ignores) > 0 {
		t.ignore = ignore.CompileIgnoreLines(ignores...)
	}

	if err := fw.addRecursive(t, abs); err != nil {
		return err
	}

	fw.mu.Lock()
	fw.targets = append(fw.targets, t)
	// longest root first, so the most specific target claims nested events
	for i := len(fw.targets) - 1; i > 0; i-- {
		if len(fw.targets[i].root) > len(fw.targets[i-1].root) {
			fw.targets[i], fw.targets[i-1] = fw.targets[i-1], fw.targets[i]
		}
	}
	fw.mu.Unlock()

	log.Debugf("[Watcher] watching %q", abs)
	return nil
}

// Unwatch detaches a previously watched root, releasing the OS watch handle
// of every directory attached under it.
func (fw *Watcher) Unwatch(root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return
	}
	abs = filepath.Clean(abs)

	var watched []string
	fw.mu.Lock()
	for i, t := range fw.targets {
		if t.root == abs {
			watched = t.watched
			fw.targets = append(fw.targets[:i], fw.targets[i+1:]...)
			break
		}
	}
	fw.mu.Unlock()

	// best effort; a directory deleted in the meantime is already detached
	for _, dir := range watched {
		_ = fw.w.Remove(dir)
	}
}

// Close stops the event loop and releases the OS watch handles.
func (fw *Watcher) Close() error {
	err := fw.w.Close()
	<-fw.done
	return err
}

func (fw *Watcher) addRecursive(t *target, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := util.Retry(context.Background(), func() error {
			return fw.w.Add(path)
		}, util.WatchRetryOptions(context.Background())...); err != nil {
			return err
		}
		fw.mu.Lock()
		t.watched = append(t.watched, path)
		fw.mu.Unlock()
		return nil
	})
}

func (fw *Watcher) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			fw.handle(ev)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			log.Warnf("[Watcher] %v", err)
		}
	}
}

func (fw *Watcher) handle(ev fsnotify.Event) {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	if ev.Op&relevant == 0 {
		return
	}

	t := fw.targetFor(ev.Name)
	if t == nil {
		return
	}

	// keep recursive coverage when new directories appear
	if ev.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := fw.addRecursive(t, ev.Name); err != nil {
				log.Warnf("[Watcher] attach %q: %v", ev.Name, err)
			}
		}
	}

	rel, err := filepath.Rel(t.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)

	if t.ignore != nil && t.ignore.MatchesPath(rel) {
		log.Tracef("[Watcher] ignored %q", rel)
		return
	}

	log.Debugf("[Watcher] change %q under %q", rel, t.root)
	t.buf.Append(rel)
}

func (fw *Watcher) targetFor(name string) *target {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for _, t := range fw.targets {
		if name == t.root || strings.HasPrefix(name, t.root+string(filepath.Separator)) {
			return t
		}
	}
	return nil
}
