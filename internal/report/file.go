package report

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

// FileName is the name given to a report written into a folder.
func FileName(a *orchestrator.Analysis, format Format) string {
	return fmt.Sprintf("perfscan-%s.%s", a.Result.ID, format.Extension())
}

// WriteFile renders a into outputPath and returns the written file.
// An existing folder or a path without extension gets FileName appended.
// Text reports written to files carry no color codes.
func WriteFile(outputPath string, format Format, a *orchestrator.Analysis, opts Options) (string, error) {
	path, folder, err := files.DetermineFileFullPath(outputPath, FileName(a, format))
	if err != nil {
		return "", err
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return "", err
	}

	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	if err := Write(&buf, format, a, opts); err != nil {
		return "", err
	}
	if err := files.WriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
