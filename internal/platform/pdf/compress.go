package pdf

import (
	"bytes"
	"fmt"
)

var (
	pdfHeader  = []byte("%PDF-")
	pdfTrailer = []byte("%%EOF")
)

// Compress normalizes rendered output before upload. It verifies the PDF
// header and truncates anything Chromium appended after the final %%EOF
// marker.
func Compress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pdfHeader) {
		return nil, fmt.Errorf("pdf: missing header")
	}
	idx := bytes.LastIndex(data, pdfTrailer)
	if idx < 0 {
		return nil, fmt.Errorf("pdf: missing trailer")
	}
	end := idx + len(pdfTrailer)
	if end < len(data) && data[end] == '\n' {
		end++
	}
	return data[:end], nil
}
