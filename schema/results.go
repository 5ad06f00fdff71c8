package schema

import "maps"

// Metrics maps a metric name to its value (float64 or string).
type Metrics map[string]any

// Entry is one path's results for one collector. File entries hold the
// collector's own output; directory entries only hold aggregated totals.
type Entry struct {
	Kind     EntryKind          `json:"kind"`
	Total    Metrics            `json:"total"`
	Detailed map[string]Metrics `json:"detailed,omitempty"`
}

// ResultSet maps a canonical relative path to its entry for one collector.
type ResultSet map[string]Entry

// ResultTree maps a collector name to its result set for one revision.
type ResultTree map[string]ResultSet

// NewFileEntry builds a leaf entry.
func NewFileEntry(total Metrics, detailed map[string]Metrics) Entry {
	if total == nil {
		total = Metrics{}
	}
	return Entry{Kind: FileKind, Total: total, Detailed: detailed}
}

// NewDirectoryEntry builds an aggregated entry.
func NewDirectoryEntry(total Metrics) Entry {
	if total == nil {
		total = Metrics{}
	}
	return Entry{Kind: DirectoryKind, Total: total}
}

// NewErrorEntry builds a leaf entry that records a collector failure for a file.
func NewErrorEntry(msg string) Entry {
	return NewFileEntry(Metrics{ErrorKey: msg}, nil)
}

// IsDirectory reports whether the entry holds aggregated totals.
func (e Entry) IsDirectory() bool {
	return e.Kind == DirectoryKind
}

// Err returns the recorded collector failure, if any.
func (e Entry) Err() (string, bool) {
	if e.Total == nil {
		return "", false
	}
	msg, ok := e.Total[ErrorKey].(string)
	return msg, ok
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := Entry{Kind: e.Kind, Total: maps.Clone(e.Total)}
	if out.Total == nil {
		out.Total = Metrics{}
	}
	if e.Detailed != nil {
		out.Detailed = make(map[string]Metrics, len(e.Detailed))
		for k, v := range e.Detailed {
			out.Detailed[k] = maps.Clone(v)
		}
	}
	return out
}

// Clone returns a deep copy of the result set.
func (rs ResultSet) Clone() ResultSet {
	out := make(ResultSet, len(rs))
	for k, v := range rs {
		out[k] = v.Clone()
	}
	return out
}

// Files returns only the leaf entries of the result set.
func (rs ResultSet) Files() ResultSet {
	out := make(ResultSet, len(rs))
	for k, v := range rs {
		if !v.IsDirectory() {
			out[k] = v
		}
	}
	return out
}

// Lookup resolves a path or a "file:function" detail key to its metrics.
func (rs ResultSet) Lookup(key string) (Metrics, bool) {
	if e, ok := rs[key]; ok {
		return e.Total, true
	}
	file, sub, found := cutDetailKey(key)
	if !found {
		return nil, false
	}
	e, ok := rs[file]
	if !ok || e.Detailed == nil {
		return nil, false
	}
	m, ok := e.Detailed[sub]
	return m, ok
}

// cutDetailKey splits "file:function" at the last colon.
func cutDetailKey(key string) (string, string, bool) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}
