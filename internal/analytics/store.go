package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const shardExt = ".jsonl"

// dayLayout is the calendar-day portion of a shard name. Shard identity is
// the only index into storage, so the format must stay byte-stable.
const dayLayout = "2006-01-02"

var shardNamePattern = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})\.jsonl$`)

// ShardName returns the deterministic file name for a tenant's shard on the
// given UTC calendar day, e.g. "acme_2026-08-29.jsonl".
func ShardName(tenantID string, day time.Time) string {
	return tenantID + "_" + day.UTC().Format(dayLayout) + shardExt
}

// ParseShardName extracts the tenant id and day from a shard file name.
// Returns ok=false for names that don't follow the naming scheme; such
// files are never touched by the sweeper.
func ParseShardName(name string) (tenantID string, day time.Time, ok bool) {
	m := shardNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, false
	}
	day, err := time.ParseInLocation(dayLayout, m[2], time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}
	return m[1], day, true
}

// ShardInfo describes one shard file on disk. Day is zero when the file
// name doesn't parse as a tenant/day pair.
type ShardInfo struct {
	Name     string
	TenantID string
	Day      time.Time
	Size     int64
	ModTime  time.Time
}

// ShardStore is the append-log abstraction behind the analytics service.
// The aggregation layers only ever see events, so a future swap to a
// different durable append log stays local to this interface.
type ShardStore interface {
	// Append writes one serialized record to the tenant's shard for the
	// given day, creating the shard (and its directory) if needed. The
	// record must not contain a newline.
	Append(tenantID string, day time.Time, record []byte) error

	// ReadShard returns the raw contents of a shard. A missing shard
	// reports fs.ErrNotExist through the error chain.
	ReadShard(name string) ([]byte, error)

	// DeleteShard permanently removes a shard.
	DeleteShard(name string) error

	// ListShards returns metadata for every shard file.
	ListShards() ([]ShardInfo, error)
}

// FileStore keeps one JSONL file per (tenant, UTC day) under a single
// directory. Appends rely on O_APPEND with a single write syscall, so
// concurrent appends to the same shard never interleave partial lines.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Append(tenantID string, day time.Time, record []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Name: s.dir, Err: err}
	}
	name := ShardName(tenantID, day)
	if name != filepath.Base(name) {
		return &StorageError{Op: "append", Name: name, Err: fmt.Errorf("invalid shard name")}
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &StorageError{Op: "open", Name: name, Err: err}
	}
	line := make([]byte, 0, len(record)+1)
	line = append(line, record...)
	line = append(line, '\n')
	_, werr := f.Write(line)
	cerr := f.Close()
	if werr != nil {
		return &StorageError{Op: "append", Name: name, Err: werr}
	}
	if cerr != nil {
		return &StorageError{Op: "close", Name: name, Err: cerr}
	}
	return nil
}

func (s *FileStore) ReadShard(name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, &StorageError{Op: "read", Name: name, Err: fmt.Errorf("invalid shard name")}
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, &StorageError{Op: "read", Name: name, Err: err}
	}
	return data, nil
}

func (s *FileStore) DeleteShard(name string) error {
	if name != filepath.Base(name) {
		return &StorageError{Op: "delete", Name: name, Err: fmt.Errorf("invalid shard name")}
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return &StorageError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

func (s *FileStore) ListShards() ([]ShardInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "list", Name: s.dir, Err: err}
	}
	shards := make([]ShardInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), shardExt) {
			continue
		}
		info := ShardInfo{Name: entry.Name()}
		if tenantID, day, ok := ParseShardName(entry.Name()); ok {
			info.TenantID = tenantID
			info.Day = day
		}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
			info.ModTime = fi.ModTime()
		}
		shards = append(shards, info)
	}
	return shards, nil
}
