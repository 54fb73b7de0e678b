// Package picker asks the user which report to open when no path was given
// on the command line.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/prettymuchbryce/allureview/internal/archive"
	"github.com/prettymuchbryce/allureview/internal/fs"
	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
)

// ErrNoSelection is returned when the user cancels without choosing a report.
var ErrNoSelection = errors.New("no report selected")

// Source kinds offered by the picker.
const (
	ChoiceArchive = "zip"
	ChoiceFolder  = "folder"
)

// Picker selects a report path interactively.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// Func adapts a function to the Picker interface.
type Func func(ctx context.Context) (string, error)

// Pick calls f.
func (f Func) Pick(ctx context.Context) (string, error) {
	return f(ctx)
}

// Form is a terminal form that asks for the report type and then its path.
type Form struct {
	Fs afero.Fs
}

// NewForm creates a Form that validates paths against afs.
func NewForm(afs afero.Fs) *Form {
	return &Form{Fs: afs}
}

// Pick runs the form. Cancelling, or submitting an empty path, yields
// ErrNoSelection.
func (f *Form) Pick(ctx context.Context) (string, error) {
	choice := ChoiceArchive
	var path string

	if ctx.Err() != nil {
		return "", ErrNoSelection
	}

	// The form handles Ctrl+C itself and reports it as ErrUserAborted.
	form := f.build(&choice, &path)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrNoSelection
		}
		return "", err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrNoSelection
	}
	return path, nil
}

func (f *Form) build(choice, path *string) *huh.Form {
	kindGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Report type").
			Description("Open a ZIP archive or an extracted report folder.").
			Key("report_type").
			Options(
				huh.NewOption("ZIP file", ChoiceArchive),
				huh.NewOption("Folder", ChoiceFolder),
			).
			Value(choice),
	)

	archiveGroup := huh.NewGroup(
		huh.NewInput().
			Title("Allure report ZIP").
			Description("Path to a .zip file containing the report.").
			Key("archive_path").
			Value(path).
			Validate(func(s string) error { return f.ValidatePath(ChoiceArchive, s) }),
	).WithHideFunc(func() bool { return *choice != ChoiceArchive })

	folderGroup := huh.NewGroup(
		huh.NewInput().
			Title("Allure report folder").
			Description("Folder containing index.html.").
			Key("folder_path").
			Value(path).
			Validate(func(s string) error { return f.ValidatePath(ChoiceFolder, s) }),
	).WithHideFunc(func() bool { return *choice != ChoiceFolder })

	return huh.NewForm(kindGroup, archiveGroup, folderGroup)
}

// ValidatePath checks that s names something of the chosen kind.
// An empty value is accepted and treated as a cancelled selection.
func (f *Form) ValidatePath(choice, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	expanded := pathutil.ExpandTilde(s)

	switch choice {
	case ChoiceArchive:
		if !archive.IsZipName(expanded) {
			return fmt.Errorf("not a .zip file")
		}
		if !fs.IsFile(f.Fs, expanded) {
			return fmt.Errorf("file not found")
		}
	case ChoiceFolder:
		if !fs.IsDir(f.Fs, expanded) {
			return fmt.Errorf("folder not found")
		}
	default:
		return fmt.Errorf("unknown report type %q", choice)
	}
	return nil
}
