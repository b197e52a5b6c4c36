package archive

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedArchive is returned when the container cannot be decoded.
	ErrMalformedArchive = errors.New("archive: malformed archive")

	// ErrMissingDataset matches every *MissingDatasetError.
	ErrMissingDataset = errors.New("archive: missing dataset")
)

// MissingDatasetError reports required datasets absent from an archive.
type MissingDatasetError struct {
	Missing []Dataset
}

func (e *MissingDatasetError) Error() string {
	names := make([]string, len(e.Missing))
	for i, d := range e.Missing {
		names[i] = d.String()
	}
	return "archive: missing required dataset(s): " + strings.Join(names, ", ")
}

// Is reports whether target is ErrMissingDataset.
func (e *MissingDatasetError) Is(target error) bool {
	return target == ErrMissingDataset
}
