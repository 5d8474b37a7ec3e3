package hostsio

import (
	"fmt"

	"github.com/albibenni/focus/internal/focus/domain"
)

func fileUnavailable(path string, err error) error {
	return fmt.Errorf("%w: reading %s: %w", domain.ErrFileUnavailable, path, err)
}

func writeFailure(path string, err error) error {
	return fmt.Errorf("%w: writing %s: %w", domain.ErrWriteFailure, path, err)
}
