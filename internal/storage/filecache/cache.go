package filecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"newsdesk/internal/domain"
)

// Cache stores user data as a JSON file. Other processes sharing the file
// are observed through fsnotify; writes are atomic renames so readers never
// see partial content.
type Cache struct {
	path    string
	key     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu   sync.Mutex
	last []byte

	changes   chan domain.CacheChange
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(path, key string, logger *slog.Logger) (*Cache, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: the file itself is replaced on every write.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch cache dir: %w", err)
	}

	c := &Cache{
		path:    abs,
		key:     key,
		watcher: watcher,
		logger:  logger.With("component", "filecache", "path", abs),
		changes: make(chan domain.CacheChange, 16),
		done:    make(chan struct{}),
	}

	c.last, err = c.read()
	if err != nil {
		watcher.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.loop()

	return c, nil
}

func (c *Cache) Get(_ context.Context) (domain.UserData, error) {
	data, err := c.read()
	if err != nil {
		return nil, err
	}
	if domain.IsEmptyUserData(data) {
		return nil, nil
	}
	return data, nil
}

func (c *Cache) Set(_ context.Context, data domain.UserData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	c.last = bytes.Clone(data)
	return nil
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = nil
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

func (c *Cache) Changes() <-chan domain.CacheChange {
	return c.changes
}

func (c *Cache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.watcher.Close()
		c.wg.Wait()
		close(c.changes)
	})
	return err
}

func (c *Cache) read() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return data, nil
}

func (c *Cache) loop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != c.path {
				continue
			}
			c.handle()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("file watcher error", "error", err)
		}
	}
}

// handle compares the file with what this process last wrote and reports
// the difference as an external change.
func (c *Cache) handle() {
	c.mu.Lock()
	current, err := c.read()
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("failed to read cache file after change", "error", err)
		return
	}
	if bytes.Equal(current, c.last) {
		c.mu.Unlock()
		return
	}
	c.last = current
	c.mu.Unlock()

	change := domain.CacheChange{Key: c.key}
	if !domain.IsEmptyUserData(current) {
		change.Value = current
	}

	select {
	case c.changes <- change:
	default:
		c.logger.Warn("dropping cache change, consumer is behind")
	}
}
