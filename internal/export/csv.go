package export

import (
	"encoding/csv"
	"io"

	"github.com/shpitdev/gym-hunter/internal/pipeline"
)

type CSV struct{}

func (CSV) Ext() string { return "csv" }

func (CSV) Export(w io.Writer, records []pipeline.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
