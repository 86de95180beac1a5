package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3BlobStore stores blobs as objects in a single bucket.
type S3BlobStore struct {
	client s3iface.S3API
	bucket string
}

// NewS3BlobStore creates a blob store over bucket.
func NewS3BlobStore(client s3iface.S3API, bucket string) *S3BlobStore {
	return &S3BlobStore{client: client, bucket: bucket}
}

var _ portsrepo.BlobStore = (*S3BlobStore)(nil)

func (s *S3BlobStore) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("put object %s", key), err)
	}
	return nil
}

func (s *S3BlobStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreError(fmt.Sprintf("get object %s", key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.StoreError(fmt.Sprintf("read object %s", key), err)
	}
	return data, nil
}
