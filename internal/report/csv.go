// Package report serializes institutional flow rows to CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"TpexRadar/internal/model"
)

var header = []string{"code", "name", "buy", "sell", "net"}

// utf8BOM keeps spreadsheet software from misreading the Chinese
// instrument names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes rows to path. No rows still produces a header-only
// file; that is the success contract for non-trading days.
func WriteCSV(path string, rows []model.FlowRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Code,
			r.Name,
			strconv.FormatInt(r.Buy, 10),
			strconv.FormatInt(r.Sell, 10),
			strconv.FormatInt(r.Net, 10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", r.Code, err)
		}
	}
	w.Flush()
	return w.Error()
}
