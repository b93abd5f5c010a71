// Package spreadsheet reads uploaded workbooks into raw ingestion rows.
package spreadsheet

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeXLS  = "application/vnd.ms-excel"
)

// AllowedContentTypes are the only upload types accepted before parsing.
var AllowedContentTypes = []string{ContentTypeXLSX, ContentTypeXLS}

var extensionTypes = map[string]string{
	".xlsx": ContentTypeXLSX,
	".xls":  ContentTypeXLS,
}

var ErrUnsupportedMediaType = apperror.New(
	apperror.CodeUnsupportedMediaType,
	"only Excel files (.xlsx, .xls) are accepted",
	http.StatusUnsupportedMediaType,
)

// CheckContentType rejects anything that is not one of AllowedContentTypes.
// Media type parameters are ignored.
func CheckContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ErrUnsupportedMediaType
	}
	for _, allowed := range AllowedContentTypes {
		if strings.EqualFold(mediaType, allowed) {
			return nil
		}
	}
	return ErrUnsupportedMediaType
}

// ContentTypeForPath maps a local file extension onto its spreadsheet type.
func ContentTypeForPath(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

// Read parses the first sheet of a workbook. Row 0 is the header; every later
// non-blank row becomes a RawRow keyed by header text. Blank cells and cells
// under a blank header are omitted so presence checks see them as absent.
func Read(r io.Reader) ([]ingest.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "unable to read spreadsheet", http.StatusBadRequest)
	}
	defer f.Close()

	return readFirstSheet(f)
}

// ReadFile is Read for a file on disk.
func ReadFile(path string) ([]ingest.RawRow, error) {
	if err := CheckContentType(ContentTypeForPath(path)); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "unable to read spreadsheet", http.StatusBadRequest)
	}
	defer f.Close()

	return readFirstSheet(f)
}

func readFirstSheet(f *excelize.File) ([]ingest.RawRow, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apperror.New(apperror.CodeInvalidInput, "spreadsheet has no sheets", http.StatusBadRequest)
	}

	// Raw values keep number formats such as "#,##0" or "0%" out of the cells.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, fmt.Sprintf("unable to read sheet %q", sheet), http.StatusBadRequest)
	}
	if len(rows) == 0 {
		return []ingest.RawRow{}, nil
	}

	headers := rows[0]
	out := make([]ingest.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(ingest.RawRow, len(cells))
		for i, cell := range cells {
			if i >= len(headers) || strings.TrimSpace(headers[i]) == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[headers[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
