// Package export writes ranked records as tabular files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shpitdev/gym-hunter/internal/pipeline"
)

// Exporter writes records to w in Header() column order.
type Exporter interface {
	Export(w io.Writer, records []pipeline.Record) error
	// Ext is the file extension without the leading dot.
	Ext() string
}

// Header returns the stable column header for exported records.
func Header() []string {
	return []string{
		"rank",
		"name",
		"address",
		"phone",
		"website",
		"reason",
		"features",
		"rating",
		"retrieved_at",
	}
}

func row(r pipeline.Record) []string {
	rating := ""
	if r.Rating != nil {
		rating = strconv.FormatFloat(*r.Rating, 'f', -1, 64)
	}
	retrievedAt := ""
	if !r.RetrievedAt.IsZero() {
		retrievedAt = r.RetrievedAt.Format(time.RFC3339)
	}
	return []string{
		string(r.Rank),
		r.Name,
		r.Address,
		r.Phone,
		r.Website,
		r.Reason,
		strings.Join(r.Features, ", "),
		rating,
		retrievedAt,
	}
}

// FileName returns "<prefix>_YYYYMMDD_HHMMSS.<ext>" for now.
func FileName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// WriteFile exports records to dir/FileName(prefix, e.Ext(), now), creating dir
// if needed, and returns the written path.
func WriteFile(e Exporter, dir, prefix string, now time.Time, records []pipeline.Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(prefix, e.Ext(), now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := e.Export(f, records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// ForFormat returns the exporter for "xlsx" or "csv".
func ForFormat(format, sheet string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "xlsx":
		return XLSX{Sheet: sheet}, nil
	case "csv":
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want xlsx or csv)", format)
	}
}
