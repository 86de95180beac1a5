package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
)

// DefaultLimit and MaxLimit bound a page of ledger history.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// EncodeToken creates an opaque cursor pointing at a transaction in a member's ordered history.
func EncodeToken(timestamp, transactionID string) string {
	return EncodeMultiFieldToken(timestamp, transactionID)
}

// DecodeToken parses a cursor created by EncodeToken.
func DecodeToken(token string) (timestamp string, transactionID string, err error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return "", "", err
	}
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pagination token format (split)")
	}
	return parts[0], parts[1], nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// PageTransactions returns up to limit transactions of the already ordered txns that follow the
// cursor in token, and the token for the next page ("" on the last page).
// An empty token starts at the beginning. A cursor whose transaction no longer exists is an error
// rather than a silent restart.
func PageTransactions(txns []domain.Transaction, limit int, token string) ([]domain.Transaction, string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := 0
	if token != "" {
		_, lastID, err := DecodeToken(token)
		if err != nil {
			return nil, "", err
		}
		start = -1
		for i, t := range txns {
			if t.TransactionID == lastID {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", fmt.Errorf("pagination token refers to unknown transaction %q", lastID)
		}
	}

	end := start + limit
	if end >= len(txns) {
		return txns[start:], "", nil
	}
	last := txns[end-1]
	return txns[start:end], EncodeToken(last.Timestamp, last.TransactionID), nil
}
