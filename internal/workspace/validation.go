package workspace

import (
	"fmt"

	"github.com/spf13/afero"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// ValidateSource checks that path names a regular file
func ValidateSource(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", exporterrors.ErrInputNotFound, path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", exporterrors.ErrInputNotFound, path)
	}
	return nil
}
