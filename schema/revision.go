package schema

import (
	"fmt"
	"slices"
	"time"
)

// Revision is one snapshot of the source tree as reported by a revision source.
// Path lists are relative to the project root and use forward slashes.
type Revision struct {
	Key           string   `json:"key"`
	AuthorName    string   `json:"author_name"`
	AuthorEmail   string   `json:"author_email"`
	Date          int64    `json:"date"`
	Message       string   `json:"message"`
	TrackedFiles  []string `json:"tracked_files,omitempty"`
	TrackedDirs   []string `json:"tracked_dirs,omitempty"`
	AddedFiles    []string `json:"added_files,omitempty"`
	ModifiedFiles []string `json:"modified_files,omitempty"`
	DeletedFiles  []string `json:"deleted_files,omitempty"`
}

// Time returns the revision date as a time.Time.
func (r Revision) Time() time.Time {
	return time.Unix(r.Date, 0)
}

// ShortKey returns the first 7 characters of the key.
func (r Revision) ShortKey() string {
	if len(r.Key) > 7 {
		return r.Key[:7]
	}
	return r.Key
}

// Header returns the revision without its path lists.
func (r Revision) Header() Revision {
	return Revision{
		Key:         r.Key,
		AuthorName:  r.AuthorName,
		AuthorEmail: r.AuthorEmail,
		Date:        r.Date,
		Message:     r.Message,
	}
}

// IndexedRevision is a revision that has been analyzed and stored.
// Its result tree lives in a separate blob and is loaded on demand.
type IndexedRevision struct {
	Revision
	Collectors []string `json:"collectors"`
}

// NewIndexedRevision records which collectors ran against a revision.
func NewIndexedRevision(rev Revision, collectors []string) IndexedRevision {
	return IndexedRevision{Revision: rev.Header(), Collectors: slices.Clone(collectors)}
}

// HasCollector reports whether the named collector ran against this revision.
func (ir IndexedRevision) HasCollector(name string) bool {
	return slices.Contains(ir.Collectors, name)
}

// RevisionBlob is the durable unit written once per revision.
type RevisionBlob struct {
	Revision IndexedRevision `json:"revision"`
	Results  ResultTree      `json:"results"`
}

// Index is an ordered, duplicate-free mapping of revision key to indexed revision.
// Insertion order is the build order (oldest first).
type Index struct {
	keys      []string
	revisions map[string]IndexedRevision
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{revisions: make(map[string]IndexedRevision)}
}

// Add appends a revision; a key already present is rejected.
func (ix *Index) Add(rev IndexedRevision) error {
	if _, ok := ix.revisions[rev.Key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRevision, rev.Key)
	}
	ix.keys = append(ix.keys, rev.Key)
	ix.revisions[rev.Key] = rev
	return nil
}

// Contains reports whether the key has already been indexed.
func (ix *Index) Contains(key string) bool {
	_, ok := ix.revisions[key]
	return ok
}

// Get returns the indexed revision for a key.
func (ix *Index) Get(key string) (IndexedRevision, bool) {
	rev, ok := ix.revisions[key]
	return rev, ok
}

// Len returns the number of indexed revisions.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Keys returns revision keys in insertion order.
func (ix *Index) Keys() []string {
	return slices.Clone(ix.keys)
}

// Newest returns the indexed revisions newest first by date, insertion order
// breaking ties.
func (ix *Index) Newest() []IndexedRevision {
	out := make([]IndexedRevision, 0, len(ix.keys))
	for i := len(ix.keys) - 1; i >= 0; i-- {
		out = append(out, ix.revisions[ix.keys[i]])
	}
	slices.SortStableFunc(out, func(a, b IndexedRevision) int {
		switch {
		case a.Date > b.Date:
			return -1
		case a.Date < b.Date:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Last returns the most recent indexed revision.
func (ix *Index) Last() (IndexedRevision, bool) {
	newest := ix.Newest()
	if len(newest) == 0 {
		return IndexedRevision{}, false
	}
	return newest[0], true
}
