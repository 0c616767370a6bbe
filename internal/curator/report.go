package curator

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const reportTimeLayout = "20060102_150405"

// FailureReport is the plain text file written when faces could not be hidden.
type FailureReport struct {
	AlbumID string
	Time    time.Time
	Summary *Summary
	// AssetErrors lists assets whose faces were never loaded.
	AssetErrors []ItemResult
}

// FileName returns failed_faces_YYYYMMDD_HHMMSS.txt for the report time.
func (r *FailureReport) FileName() string {
	return fmt.Sprintf("failed_faces_%s.txt", r.Time.Format(reportTimeLayout))
}

// String renders the report. The output is pure ASCII.
func (r *FailureReport) String() string {
	s := r.Summary
	var sb strings.Builder
	fmt.Fprintf(&sb, "Failures from hide-faces run on %s\n", r.Time.Format(reportTimeLayout))
	fmt.Fprintf(&sb, "Album ID: %s\n", r.AlbumID)
	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "Total faces processed: %d\n", s.Total())
	fmt.Fprintf(&sb, "Faces hidden: %d\n", s.Done)
	fmt.Fprintf(&sb, "Faces skipped (already named): %d\n", s.Skipped)
	fmt.Fprintf(&sb, "Faces failed to hide: %d\n\n", s.Failed)
	sb.WriteString("Detailed failures:\n")
	for _, f := range s.Failures() {
		sb.WriteString(f.Message)
		sb.WriteByte('\n')
	}
	if len(r.AssetErrors) > 0 {
		sb.WriteString("\nAssets whose faces could not be loaded:\n")
		for _, a := range r.AssetErrors {
			sb.WriteString(a.Message)
			sb.WriteByte('\n')
		}
	}
	return toASCII(sb.String())
}

// Write stores the report at path.
func (r *FailureReport) Write(path string) error {
	if err := os.WriteFile(path, []byte(r.String()), 0600); err != nil {
		return fmt.Errorf("write failure report %s: %w", path, err)
	}
	return nil
}

// toASCII strips diacritics ("Jiří" -> "Jiri") and replaces what is left outside
// ASCII with '?'.
func toASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '?'
		}
		return r
	}, stripped)
}
