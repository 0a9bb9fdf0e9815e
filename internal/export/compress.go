package export

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Compression policy. CSV is plain text and squeezes well; PDF carries
// its own internal compression so the win is marginal. The thresholds are
// exclusive: exactly at the threshold no archive is recommended.
const (
	csvCompressThreshold = 1 << 20 // 1 MiB
	pdfCompressThreshold = 5 << 20 // 5 MiB

	csvCompressRatio = 0.3
	pdfCompressRatio = 0.9
)

// ShouldCompress reports whether an artifact of the given size is worth
// wrapping in a zip archive.
func ShouldCompress(sizeBytes int64, format Format) bool {
	switch format {
	case FormatCSV:
		return sizeBytes > csvCompressThreshold
	case FormatPDF:
		return sizeBytes > pdfCompressThreshold
	}
	return false
}

// EstimateRatio returns the expected archive-to-original size ratio.
func EstimateRatio(format Format) float64 {
	if format == FormatPDF {
		return pdfCompressRatio
	}
	return csvCompressRatio
}

// Archive wraps data as the single entry entryName inside a zip archive.
func Archive(entryName string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entryName)
	if err != nil {
		return nil, fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
