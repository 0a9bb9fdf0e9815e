// Package export implements the invoice export pipeline: request
// validation, size estimation, retry orchestration, streaming download,
// document assembly hand-off, compression, and the job state machine.
package export

import (
	"fmt"
	"regexp"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Format is the artifact format requested by the user.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

const dateLayout = "2006-01-02"

var filenameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

// Request is the user-supplied filter criteria for one export.
type Request struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Format     Format `json:"format"`
	Vendor     string `json:"vendor,omitempty"`
	NIT        string `json:"nit,omitempty"`
	IncludeTax bool   `json:"includeIVA"`
	Compress   bool   `json:"compress"`
	Filename   string `json:"filename,omitempty"`

	// Report selects the summary report variant (reports endpoint and
	// summary document layout) instead of the invoice detail variant.
	Report bool `json:"report,omitempty"`
}

// Validate checks the request locally. All problems are reported at once,
// wrapped in a ValidationError. No network is involved.
func (r Request) Validate() error {
	var merr *multierror.Error

	start, err := parseDate(r.StartDate)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("start date: %w", err))
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("end date: %w", err))
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		merr = multierror.Append(merr, fmt.Errorf("start date %s is after end date %s", r.StartDate, r.EndDate))
	}

	switch r.Format {
	case FormatCSV, FormatPDF:
	default:
		merr = multierror.Append(merr, fmt.Errorf("unsupported format %q", r.Format))
	}

	if r.Filename != "" && !filenameRe.MatchString(r.Filename) {
		merr = multierror.Append(merr, fmt.Errorf("filename must match %s", filenameRe))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid date (want YYYY-MM-DD): %q", s)
	}
	return t, nil
}

// Days returns the number of calendar days in the range, inclusive of
// both endpoints. Callers must have validated the request first.
func (r Request) Days() int {
	start, err1 := parseDate(r.StartDate)
	end, err2 := parseDate(r.EndDate)
	if err1 != nil || err2 != nil || start.After(end) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// BaseName is the artifact name without extension: the user-supplied
// filename or the facturas_<start>_<end> default.
func (r Request) BaseName() string {
	if r.Filename != "" {
		return r.Filename
	}
	return fmt.Sprintf("facturas_%s_%s", r.StartDate, r.EndDate)
}

// ArtifactName resolves the final file name. When the artifact ends up
// zipped, the format extension moves to the entry inside the archive.
func (r Request) ArtifactName(compressed bool) string {
	if compressed {
		return r.BaseName() + ".zip"
	}
	return r.BaseName() + "." + string(r.Format)
}
