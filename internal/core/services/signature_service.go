package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const dataURLPrefix = "data:image/png;base64,"

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// signatureServiceImpl stores signature images in the blob store. Blobs are immutable once
// written, so reads are served from an in-process cache.
type signatureServiceImpl struct {
	BaseService
	blobs portsrepo.BlobStore
	cache *cache.Cache
}

// NewSignatureService creates a signature service caching blobs for ttl.
func NewSignatureService(blobs portsrepo.BlobStore, ttl time.Duration) portssvc.SignatureSvc {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &signatureServiceImpl{
		blobs: blobs,
		cache: cache.New(ttl, 2*ttl),
	}
}

var _ portssvc.SignatureSvc = (*signatureServiceImpl)(nil)

func (s *signatureServiceImpl) UploadSignature(ctx context.Context, ownerID string, payload []byte) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || strings.Contains(ownerID, "/") {
		return "", fmt.Errorf("%w: invalid owner ID %q", apperrors.ErrValidation, ownerID)
	}

	img, err := decodeSignature(payload)
	if err != nil {
		s.LogWarn(ctx, "Rejected signature upload", slog.String("member_id", ownerID), slog.String("error", err.Error()))
		return "", err
	}

	key := domain.SignatureKey(ownerID, uuid.NewString())
	if err := s.blobs.PutBlob(ctx, key, img, domain.SignatureContentType); err != nil {
		s.LogError(ctx, err, "Failed to store signature", slog.String("member_id", ownerID))
		return "", err
	}
	s.cache.Set(key, img, cache.DefaultExpiration)

	s.LogInfo(ctx, "Signature stored", slog.String("member_id", ownerID), slog.String("key", key), slog.Int("bytes", len(img)))
	return key, nil
}

func (s *signatureServiceImpl) GetSignature(ctx context.Context, key string) ([]byte, error) {
	if _, ok := domain.OwnerFromSignatureKey(key); !ok {
		return nil, fmt.Errorf("%w: not a signature key: %q", apperrors.ErrValidation, key)
	}
	if cached, found := s.cache.Get(key); found {
		return cached.([]byte), nil
	}

	img, err := s.blobs.GetBlob(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load signature", slog.String("key", key))
		}
		return nil, err
	}
	s.cache.Set(key, img, cache.DefaultExpiration)
	return img, nil
}

// decodeSignature accepts raw PNG bytes or a base64 PNG data URL as produced by canvas widgets.
func decodeSignature(payload []byte) ([]byte, error) {
	payload = bytes.TrimSpace(payload)
	if bytes.HasPrefix(payload, []byte(dataURLPrefix)) {
		raw := payload[len(dataURLPrefix):]
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
		n, err := base64.StdEncoding.Decode(decoded, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 signature: %v", apperrors.ErrValidation, err)
		}
		payload = decoded[:n]
	}
	if !bytes.HasPrefix(payload, pngMagic) {
		return nil, fmt.Errorf("%w: signature is not a PNG image", apperrors.ErrValidation)
	}
	return payload, nil
}
