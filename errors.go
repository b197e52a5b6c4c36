package isbnmap

import (
	"errors"
	"fmt"

	"github.com/hupe1980/isbnmap/archive"
	"github.com/hupe1980/isbnmap/index"
	"github.com/hupe1980/isbnmap/runlength"
	"github.com/hupe1980/isbnmap/snapshot"
)

var (
	// ErrMalformedInput is returned when an archive or run buffer cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidIdentifier is returned for identifiers that are not 13 digits.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidArgument is returned for negative counts and empty grids.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownDataset is returned for datasets that are not loaded.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrMissingDataset is returned when a required dataset is absent from the archive.
	ErrMissingDataset = errors.New("missing dataset")

	// ErrClosed is returned by queries after Close.
	ErrClosed = errors.New("map closed")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, runlength.ErrMalformedInput),
		errors.Is(err, archive.ErrMalformedArchive),
		errors.Is(err, snapshot.ErrCorrupt),
		errors.Is(err, snapshot.ErrBadMagic):
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	case errors.Is(err, index.ErrInvalidIdentifier):
		return fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	case errors.Is(err, index.ErrInvalidArgument),
		errors.Is(err, runlength.ErrInvalidGrid):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, archive.ErrUnknownDataset):
		return fmt.Errorf("%w: %w", ErrUnknownDataset, err)
	case errors.Is(err, archive.ErrMissingDataset):
		// the typed error stays reachable through errors.As
		return fmt.Errorf("%w: %w", ErrMissingDataset, err)
	}

	return err
}
