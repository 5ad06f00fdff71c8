package outwriter

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// revisionCells returns the leading cells shared by the index and report tables.
func revisionCells(rev schema.Revision) []string {
	return []string{
		rev.ShortKey(),
		rev.AuthorName,
		rev.Time().Format(contract.DateTimeFormat),
		humanize.Time(rev.Time()),
	}
}

// truncateText shortens text to maxWidth runes with an ellipsis suffix.
func truncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// firstLine keeps the subject line of a commit message.
func firstLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return line
}

func writeIndexTable(w io.Writer, revisions []schema.IndexedRevision, cfg *contract.Config) error {
	headers := []string{"Revision", "Author", "Date", "Age", "Collectors"}
	if cfg.Message {
		headers = append(headers, "Message")
	}
	data := make([][]string, 0, len(revisions))
	for _, rev := range revisions {
		row := append(revisionCells(rev.Revision), strings.Join(rev.Collectors, ","))
		if cfg.Message {
			row = append(row, truncateText(firstLine(rev.Message), GetMaxTablePathWidth(cfg, 5)))
		}
		data = append(data, row)
	}
	return writeTable(w, headers, data)
}

func writeIndexCSV(w io.Writer, revisions []schema.IndexedRevision, cfg *contract.Config) error {
	header := []string{"revision", "author_name", "author_email", "date", "collectors"}
	if cfg.Message {
		header = append(header, "message")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, rev := range revisions {
			row := []string{
				rev.Key,
				rev.AuthorName,
				rev.AuthorEmail,
				rev.Time().Format(contract.DateTimeFormat),
				strings.Join(rev.Collectors, "|"),
			}
			if cfg.Message {
				row = append(row, rev.Message)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
