// Package report renders a short summary of the report being served:
// where it came from, where it was extracted, when it was generated, and
// the URL to open.
package report
