package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/codetrend/schema"
)

// listingFile is the per-archiver listing name inside the cache directory.
const listingFile = "index.json"

// FileBackend stores listings and blobs as JSON documents below a cache directory:
//
//	<root>/<archiver>/index.json
//	<root>/<archiver>/<key>.json
type FileBackend struct {
	root string
}

var _ Backend = &FileBackend{} // Compile-time check

// NewFileBackend creates the cache directory if needed.
func NewFileBackend(root string) (*FileBackend, error) {
	if root == "" {
		return nil, errors.New("cache path cannot be empty for the file backend")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %q: %w. Ensure the directory is writable", root, err)
	}
	return &FileBackend{root: root}, nil
}

// Name implements the Backend interface.
func (b *FileBackend) Name() schema.DatabaseBackend {
	return schema.FileBackend
}

// Location implements the Backend interface.
func (b *FileBackend) Location() string {
	return b.root
}

func (b *FileBackend) archiverDir(archiver string) string {
	return filepath.Join(b.root, archiver)
}

func (b *FileBackend) blobPath(archiver, key string) string {
	return filepath.Join(b.archiverDir(archiver), key+".json")
}

// ListingExists implements the Backend interface.
func (b *FileBackend) ListingExists(archiver string) (bool, error) {
	_, err := os.Stat(filepath.Join(b.archiverDir(archiver), listingFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadListing implements the Backend interface.
func (b *FileBackend) ReadListing(archiver string) ([]schema.IndexedRevision, error) {
	data, err := os.ReadFile(filepath.Join(b.archiverDir(archiver), listingFile))
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.IndexedRevision{}, nil
	}
	if err != nil {
		return nil, err
	}
	var revs []schema.IndexedRevision
	if err := json.Unmarshal(data, &revs); err != nil {
		return nil, fmt.Errorf("corrupt listing %s: %w", filepath.Join(archiver, listingFile), err)
	}
	return revs, nil
}

// WriteListing implements the Backend interface.
func (b *FileBackend) WriteListing(archiver string, revs []schema.IndexedRevision) error {
	if revs == nil {
		revs = []schema.IndexedRevision{}
	}
	data, err := json.MarshalIndent(revs, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(b.archiverDir(archiver), listingFile), data)
}

// BlobExists implements the Backend interface.
func (b *FileBackend) BlobExists(archiver, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(b.blobPath(archiver, key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteBlob implements the Backend interface.
func (b *FileBackend) WriteBlob(archiver, key string, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return writeFileAtomic(b.blobPath(archiver, key), payload)
}

// ReadBlob implements the Backend interface.
func (b *FileBackend) ReadBlob(archiver, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.blobPath(archiver, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no stored results for %s", schema.ErrRevisionNotIndexed, key)
	}
	return data, err
}

// Status implements the Backend interface.
func (b *FileBackend) Status() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(schema.FileBackend),
		Location:  b.root,
		Connected: true,
		Archivers: map[string]int{},
	}

	entries, err := os.ReadDir(b.root)
	if errors.Is(err, fs.ErrNotExist) {
		status.Connected = false
		return status, nil
	}
	if err != nil {
		return status, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		archiver := entry.Name()
		exists, err := b.ListingExists(archiver)
		if err != nil || !exists {
			continue
		}
		revs, err := b.ReadListing(archiver)
		if err != nil {
			return status, err
		}
		status.Archivers[archiver] = len(revs)
		status.TotalRevisions += len(revs)
		for _, rev := range revs {
			updateDateRange(&status, rev.Date)
		}

		files, err := os.ReadDir(b.archiverDir(archiver))
		if err != nil {
			return status, err
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
				continue
			}
			if f.Name() != listingFile {
				status.TotalBlobs++
			}
			if info, err := f.Info(); err == nil {
				status.SizeBytes += info.Size()
			}
		}
	}
	return status, nil
}

// Close implements the Backend interface.
func (b *FileBackend) Close() error {
	return nil
}

// Clear removes every archiver directory that holds a listing.
// Other content of the cache directory is left alone.
func (b *FileBackend) Clear() error {
	entries, err := os.ReadDir(b.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		exists, err := b.ListingExists(entry.Name())
		if err != nil || !exists {
			continue
		}
		if err := os.RemoveAll(b.archiverDir(entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", b.archiverDir(entry.Name()), err)
		}
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// validateKey rejects revision keys that would escape the archiver directory.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid revision key %q", key)
	}
	return nil
}

func updateDateRange(status *schema.StoreStatus, date int64) {
	if date <= 0 {
		return
	}
	t := unixTime(date)
	if status.NewestRevision.IsZero() || t.After(status.NewestRevision) {
		status.NewestRevision = t
	}
	if status.OldestRevision.IsZero() || t.Before(status.OldestRevision) {
		status.OldestRevision = t
	}
}
