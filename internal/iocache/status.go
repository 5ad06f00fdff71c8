package iocache

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// PrintStoreStatus prints index store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Location: %s\n", status.Location)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.SchemaVersion > 0 {
		_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.SchemaVersion)
	}
	_, _ = fmt.Fprintf(w, "Total Revisions: %s\n", humanize.Comma(int64(status.TotalRevisions)))
	_, _ = fmt.Fprintf(w, "Total Blobs: %s\n", humanize.Comma(int64(status.TotalBlobs)))
	if status.TotalRevisions > 0 {
		_, _ = fmt.Fprintf(w, "Newest Revision: %s (%s)\n", status.NewestRevision.Format(contract.DateTimeFormat), humanize.Time(status.NewestRevision))
		_, _ = fmt.Fprintf(w, "Oldest Revision: %s (%s)\n", status.OldestRevision.Format(contract.DateTimeFormat), humanize.Time(status.OldestRevision))
	}
	_, _ = fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(max(status.SizeBytes, 0))))
	if len(status.Archivers) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "Archivers:")
	names := make([]string, 0, len(status.Archivers))
	for name := range status.Archivers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %s: %s revisions\n", name, humanize.Comma(int64(status.Archivers[name])))
	}
}
