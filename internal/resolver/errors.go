package resolver

import "fmt"

// InvalidArchiveError is returned when an input with a .zip extension is not
// a well-formed archive or cannot be safely extracted.
type InvalidArchiveError struct {
	Path string
	Err  error
}

func (e *InvalidArchiveError) Error() string {
	return fmt.Sprintf("invalid ZIP file %s: %v", e.Path, e.Err)
}

func (e *InvalidArchiveError) Unwrap() error {
	return e.Err
}

// InvalidReportError is returned when the checked directory does not
// directly contain index.html.
type InvalidReportError struct {
	Path   string
	Reason string
}

func (e *InvalidReportError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no valid Allure report in %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("no valid Allure report in %s", e.Path)
}
