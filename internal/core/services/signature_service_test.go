package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/core/services"
	"github.com/SscSPs/spa_ledger/internal/repositories/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image body")...)

// MockBlobStore is a mock type for the BlobStore interface
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockBlobStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestSignatureService_UploadAndGet(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemoryBlobStore()
	svc := services.NewSignatureService(store, 0)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	key, err := svc.UploadSignature(ctx, "00042", []byte(dataURL))
	require.NoError(t, err)

	owner, ok := domain.OwnerFromSignatureKey(key)
	require.True(t, ok)
	assert.Equal(t, "00042", owner)
	assert.True(t, strings.HasSuffix(key, ".png"))

	got, err := svc.GetSignature(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)

	stored, err := store.GetBlob(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
	assert.Equal(t, domain.SignatureContentType, store.ContentType(key))
}

func TestSignatureService_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := services.NewSignatureService(blob.NewMemoryBlobStore(), 0)

	tests := []struct {
		name    string
		owner   string
		payload []byte
	}{
		{name: "empty owner", owner: "", payload: pngBytes},
		{name: "owner with slash", owner: "a/b", payload: pngBytes},
		{name: "not png", owner: "00042", payload: []byte("GIF89a")},
		{name: "bad base64", owner: "00042", payload: []byte("data:image/png;base64,!!!")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadSignature(ctx, tt.owner, tt.payload)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := svc.GetSignature(ctx, "not/a-signature")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.GetSignature(ctx, domain.SignatureKey("00042", "missing"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSignatureService_CachesReads(t *testing.T) {
	ctx := context.Background()
	blobs := new(MockBlobStore)
	key := domain.SignatureKey("00042", "cached")
	blobs.On("GetBlob", mock.Anything, key).Return(pngBytes, nil).Once()

	svc := services.NewSignatureService(blobs, 0)
	for i := 0; i < 3; i++ {
		got, err := svc.GetSignature(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, got)
	}
	blobs.AssertNumberOfCalls(t, "GetBlob", 1)
}

func TestSignatureService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	blobs := new(MockBlobStore)
	storeErr := apperrors.StoreError("put blob", errors.New("access denied"))
	blobs.On("PutBlob", mock.Anything, mock.Anything, pngBytes, domain.SignatureContentType).Return(storeErr)

	svc := services.NewSignatureService(blobs, 0)
	_, err := svc.UploadSignature(ctx, "00042", pngBytes)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
