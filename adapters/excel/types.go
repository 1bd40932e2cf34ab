package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"xlmongo/domain/core"
)

// FileType is the spreadsheet container format, decided by extension
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
)

// DetectFileType maps a path's extension to a FileType
func DetectFileType(path string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FileTypeXLSX, nil
	case ".csv":
		return FileTypeCSV, nil
	}
	return "", fmt.Errorf("%w: %s", core.ErrUnsupportedFile, path)
}

// headerNames normalises a header row the way spreadsheet users expect:
// trimmed names, "Unnamed: i" for blanks and ".1", ".2" suffixes for repeats.
// The result has width entries.
func headerNames(raw []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool)
	suffix := make(map[string]int)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if used[name] {
			base := name
			for used[name] {
				suffix[base]++
				name = fmt.Sprintf("%s.%d", base, suffix[base])
			}
		}
		used[name] = true
		headers[i] = name
	}

	return headers
}
