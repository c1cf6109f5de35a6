package constants

import "strings"

// Source document formats.
const (
	PDF  = "PDF"
	XLSX = "XLSX"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to PDF or XLSX, or "" if unknown.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "xlsx", "xlsm":
		return XLSX
	default:
		return ""
	}
}
