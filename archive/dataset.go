package archive

import (
	"errors"
	"fmt"
)

// ErrUnknownDataset is returned when a name does not denote a known dataset.
var ErrUnknownDataset = errors.New("archive: unknown dataset")

// Dataset identifies one catalog of the archive.
type Dataset uint8

// Known datasets, in archive key order.
const (
	CadalSSNO Dataset = iota
	Cerlalc
	DuxiuSSID
	Edsebk
	GBooks
	Goodreads
	IA
	ISBNdb
	ISBNGrp
	Libby
	MD5
	NexusSTC
	NexusSTCDownload
	OCLC
	OL
	RGB
	Trantor

	numDatasets
)

var datasetNames = [numDatasets]string{
	CadalSSNO:        "cadal_ssno",
	Cerlalc:          "cerlalc",
	DuxiuSSID:        "duxiu_ssid",
	Edsebk:           "edsebk",
	GBooks:           "gbooks",
	Goodreads:        "goodreads",
	IA:               "ia",
	ISBNdb:           "isbndb",
	ISBNGrp:          "isbngrp",
	Libby:            "libby",
	MD5:              "md5",
	NexusSTC:         "nexusstc",
	NexusSTCDownload: "nexusstc_download",
	OCLC:             "oclc",
	OL:               "ol",
	RGB:              "rgb",
	Trantor:          "trantor",
}

// String returns the archive key of d.
func (d Dataset) String() string {
	if d < numDatasets {
		return datasetNames[d]
	}
	return fmt.Sprintf("dataset(%d)", uint8(d))
}

// Valid reports whether d is a known dataset.
func (d Dataset) Valid() bool { return d < numDatasets }

// MarshalText implements encoding.TextMarshaler.
func (d Dataset) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDataset, uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dataset) UnmarshalText(text []byte) error {
	v, err := ParseDataset(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDataset resolves an archive key.
func ParseDataset(name string) (Dataset, error) {
	for i, n := range datasetNames {
		if n == name {
			return Dataset(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}

// AllDatasets returns every known dataset in key order.
func AllDatasets() []Dataset {
	out := make([]Dataset, numDatasets)
	for i := range out {
		out[i] = Dataset(i)
	}
	return out
}
