package isbnmap

import "github.com/hupe1980/isbnmap/archive"

// Dataset identifies one catalog of an ISBN code archive.
type Dataset = archive.Dataset

// Frequently queried datasets. See archive for the full set.
const (
	MD5       = archive.MD5
	ISBNdb    = archive.ISBNdb
	GBooks    = archive.GBooks
	Goodreads = archive.Goodreads
	OCLC      = archive.OCLC
	OL        = archive.OL
)

// ParseDataset resolves an archive key such as "md5" or "isbndb".
func ParseDataset(name string) (Dataset, error) {
	d, err := archive.ParseDataset(name)
	return d, translateError(err)
}
