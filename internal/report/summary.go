package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/djherbis/times"
	"github.com/dustin/go-humanize"
	"github.com/itchyny/timefmt-go"
	"github.com/spf13/afero"
	"github.com/xlab/treeprint"

	"github.com/prettymuchbryce/allureview/internal/resolver"
)

// Styles for the summary
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // Cyan
	pathStyle   = lipgloss.NewStyle().Bold(true)
	urlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Underline(true) // Blue
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))                 // Gray
)

// Summary describes a resolved report that is being served.
type Summary struct {
	Source         string
	Kind           resolver.Kind
	ExtractionRoot string // empty for directory sources
	ReportDir      string
	Nested         bool
	Generated      time.Time
	Unpacked       time.Time // zero when unknown
	Files          int
	Bytes          uint64
	URL            string
}

// Collect builds a Summary for a resolution result served at url.
// Walk errors are ignored; the counts are informational.
func Collect(afs afero.Fs, result *resolver.Result, url string) Summary {
	s := Summary{
		Source:    result.Source.Abs,
		Kind:      result.Source.Kind,
		ReportDir: result.Dir,
		URL:       url,
		Generated: ReportTime(afs, filepath.Join(result.Dir, resolver.IndexFile)),
	}
	if result.Extraction != nil {
		s.ExtractionRoot = result.Extraction.Root
		s.Nested = result.Extraction.Nested()
		s.Unpacked = UnpackTime(afs, result.Extraction.Root)
	}

	afero.Walk(afs, result.Dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			s.Files++
			s.Bytes += uint64(info.Size())
		}
		return nil
	})

	return s
}

// ReportTime returns the modification time of the report entry point.
// Extraction carries archive timestamps over, so for both directories and
// archives this is when the report was built. Zero if missing.
func ReportTime(afs afero.Fs, indexPath string) time.Time {
	if info, err := afs.Stat(indexPath); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// UnpackTime returns when the extraction root was created: its birth time
// where the platform records one. Zero on filesystems without birth times.
func UnpackTime(afs afero.Fs, root string) time.Time {
	if _, isOs := underlyingOs(afs); !isOs {
		return time.Time{}
	}
	ts, err := times.Stat(root)
	if err != nil || !ts.HasBirthTime() {
		return time.Time{}
	}
	return ts.BirthTime()
}

// underlyingOs reports whether afs reads the host filesystem.
func underlyingOs(afs afero.Fs) (afero.Fs, bool) {
	type unwrapper interface{ Unwrap() afero.Fs }
	for {
		switch v := afs.(type) {
		case *afero.OsFs:
			return v, true
		case unwrapper:
			afs = v.Unwrap()
		default:
			return nil, false
		}
	}
}

// Printer writes summaries as a styled tree.
type Printer struct {
	w          io.Writer
	timeFormat string
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter(timeFormat string) *Printer {
	return NewPrinterWithWriter(os.Stdout, timeFormat)
}

// NewPrinterWithWriter creates a Printer writing to a custom writer.
func NewPrinterWithWriter(w io.Writer, timeFormat string) *Printer {
	return &Printer{w: w, timeFormat: timeFormat}
}

// Print writes s.
func (p *Printer) Print(s Summary) {
	fmt.Fprintf(p.w, "\n%s\n", titleStyle.Render("━━━ Allure report ━━━"))

	tree := treeprint.NewWithRoot(pathStyle.Render(s.Source))
	tree.AddNode(p.field("kind", string(s.Kind)))
	if s.ExtractionRoot != "" {
		tree.AddNode(p.field("extracted", s.ExtractionRoot))
	}

	report := s.ReportDir
	if s.Nested {
		report += " " + detailStyle.Render("(nested)")
	}
	tree.AddNode(p.field("report", report))

	if !s.Generated.IsZero() {
		tree.AddNode(p.field("generated", timefmt.Format(s.Generated, p.timeFormat)))
	}
	if !s.Unpacked.IsZero() {
		tree.AddNode(p.field("unpacked", timefmt.Format(s.Unpacked, p.timeFormat)))
	}
	tree.AddNode(p.field("files", fmt.Sprintf("%d %s", s.Files, detailStyle.Render("("+humanize.Bytes(s.Bytes)+")"))))
	tree.AddNode(p.field("url", urlStyle.Render(s.URL)))

	fmt.Fprint(p.w, tree.String())
}

func (p *Printer) field(name, value string) string {
	return fmt.Sprintf("%-10s %s", name+":", value)
}
