package s3

import (
	"bytes"
	"context"
	"errors"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/isbnmap/blobstore"
)

// Client is the subset of the S3 API used by Store.
// *s3.Client satisfies it.
type Client interface {
	manager.DownloadAPIClient
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// TransferConfig tunes the transfer manager.
type TransferConfig struct {
	// PartSize is the part size for ranged downloads and multipart uploads.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of parts transferred in parallel.
	// Default: 5
	Concurrency int

	// EnableChecksum requests CRC32C integrity validation on upload.
	// Default: true
	EnableChecksum bool
}

// DefaultTransferConfig returns the transfer settings used by NewStore.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTransferConfig overrides the transfer settings.
func WithTransferConfig(cfg TransferConfig) Option {
	return func(s *Store) {
		s.transfer = cfg
	}
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	transfer TransferConfig

	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// NewStore creates a new S3 blob store.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	s := &Store{
		client:   client,
		bucket:   bucket,
		transfer: DefaultTransferConfig(),
	}
	for _, fn := range optFns {
		fn(s)
	}

	s.downloader = manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = s.transfer.PartSize
		d.Concurrency = s.transfer.Concurrency
	})
	s.uploader = manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = s.transfer.PartSize
		u.Concurrency = s.transfer.Concurrency
	})

	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open looks up the object's size and returns a lazily read blob.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &s3Blob{
		client:     s.client,
		downloader: s.downloader,
		bucket:     s.bucket,
		key:        key,
		size:       aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads data, switching to multipart above the part size.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	}
	if s.transfer.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	_, err := s.uploader.Upload(ctx, input)
	return err
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}
