package service

import (
	"strings"
	"unicode/utf8"
)

// MaxUploadSize is the upload limit for CSV imports.
const MaxUploadSize = 5 * 1024 * 1024

// UploadValidation is the pre-flight verdict on an uploaded CSV file.
type UploadValidation struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Headers  []string `json:"headers,omitempty"`
	RowCount int      `json:"row_count,omitempty"`
}

// nameHeaders are the header variants at least one of which must be present.
var nameHeaders = []string{"name", "Name", "Product Name", "product_name"}

// ValidateCSVUpload runs the pre-flight checks before the import pipeline:
// filename suffix, size limit, decodability and the presence of a name
// column.
func ValidateCSVUpload(filename string, data []byte) *UploadValidation {
	if !strings.HasSuffix(filename, ".csv") {
		return &UploadValidation{Error: "File must be a CSV file"}
	}
	if len(data) > MaxUploadSize {
		return &UploadValidation{Error: "File size too large (maximum 5MB)"}
	}

	text := string(data)
	if !utf8.Valid(data) {
		return &UploadValidation{Error: "Error validating file: file is not valid UTF-8"}
	}
	text = strings.TrimPrefix(text, "\uFEFF")

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return &UploadValidation{Error: "File is empty or does not contain enough data"}
	}

	rawHeaders := strings.Split(strings.TrimRight(lines[0], "\r"), ",")
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.TrimSpace(h)
	}

	hasName := false
	for _, required := range nameHeaders {
		for _, h := range headers {
			if h == required {
				hasName = true
			}
		}
	}
	if !hasName {
		return &UploadValidation{Error: "File must contain a name column (Name or Product Name)"}
	}

	return &UploadValidation{
		Valid:    true,
		Headers:  headers,
		RowCount: len(lines) - 1,
	}
}
