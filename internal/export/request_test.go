package export

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() Request {
	return Request{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Format:    FormatCSV,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateStartAfterEnd(t *testing.T) {
	req := validRequest()
	req.StartDate, req.EndDate = "2024-02-01", "2024-01-01"
	err := req.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "after end date") {
		t.Errorf("message should name the date-order problem: %v", err)
	}
}

func TestValidateMissingDates(t *testing.T) {
	err := Request{Format: FormatCSV}.Validate()
	if err == nil {
		t.Fatal("expected error for missing dates")
	}
	msg := err.Error()
	if !strings.Contains(msg, "start date") || !strings.Contains(msg, "end date") {
		t.Errorf("all problems should be reported at once, got: %v", msg)
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"", true}, // optional
		{"mi_reporte-2024.v1", true},
		{"abc", true},
		{"ab", false},                        // too short
		{strings.Repeat("a", 51), false},     // too long
		{"con espacios", false},              // space
		{"acentuación", false},               // non-ASCII
		{"../../etc/passwd", false},          // path characters
		{strings.Repeat("b", 50), true},      // upper bound
	}
	for _, tt := range tests {
		req := validRequest()
		req.Filename = tt.filename
		err := req.Validate()
		if tt.ok && err != nil {
			t.Errorf("filename %q: unexpected error %v", tt.filename, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("filename %q: expected rejection", tt.filename)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	req := validRequest()
	req.Format = "xlsx"
	if err := req.Validate(); err == nil {
		t.Fatal("expected rejection of unsupported format")
	}
}

func TestDaysInclusive(t *testing.T) {
	req := validRequest()
	if got := req.Days(); got != 31 {
		t.Errorf("Days() = %d, want 31", got)
	}
	req.EndDate = req.StartDate
	if got := req.Days(); got != 1 {
		t.Errorf("single-day Days() = %d, want 1", got)
	}
}

func TestArtifactName(t *testing.T) {
	req := validRequest()
	if got := req.ArtifactName(false); got != "facturas_2024-01-01_2024-01-31.csv" {
		t.Errorf("default name = %q", got)
	}
	if got := req.ArtifactName(true); got != "facturas_2024-01-01_2024-01-31.zip" {
		t.Errorf("zipped name = %q", got)
	}
	req.Filename = "enero"
	req.Format = FormatPDF
	if got := req.ArtifactName(false); got != "enero.pdf" {
		t.Errorf("custom name = %q", got)
	}
}
