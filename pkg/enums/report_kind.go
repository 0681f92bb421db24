package enums

import "fmt"

// ReportKind maps to the report_kind_enum enum in Postgres. Only Z reports
// write reconciliation checkpoints; the X kind exists for audit rows and
// request routing.
type ReportKind string

const (
	ReportKindX ReportKind = "x_report"
	ReportKindZ ReportKind = "z_report"
)

var validReportKinds = []ReportKind{
	ReportKindX,
	ReportKindZ,
}

// IsValid reports whether the value matches the canonical report kind enum.
func (k ReportKind) IsValid() bool {
	for _, candidate := range validReportKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseReportKind converts raw input into ReportKind.
func ParseReportKind(value string) (ReportKind, error) {
	for _, candidate := range validReportKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report kind %q", value)
}
