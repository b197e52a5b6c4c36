package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataset(t *testing.T) {
	for _, d := range AllDatasets() {
		got, err := ParseDataset(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDataset("MD5")
	require.ErrorIs(t, err, ErrUnknownDataset)

	assert.Len(t, AllDatasets(), 17)
	assert.Equal(t, "nexusstc_download", NexusSTCDownload.String())
	assert.Equal(t, "dataset(200)", Dataset(200).String())
}

func TestDataset_Text(t *testing.T) {
	var d Dataset
	require.NoError(t, d.UnmarshalText([]byte("goodreads")))
	assert.Equal(t, Goodreads, d)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "goodreads", string(b))

	require.Error(t, d.UnmarshalText([]byte("nope")))
	_, err = Dataset(99).MarshalText()
	require.Error(t, err)
}
