package domain

import (
	"fmt"
	"strings"
)

// SignaturePrefix is the first path segment of every signature blob key.
// Historical owner recovery depends on the layout signatures/<owner_id>/<name>; a new layout
// needs a new prefix so old keys stay parseable.
const SignaturePrefix = "signatures"

// SignatureContentType is the content type of captured signature images.
const SignatureContentType = "image/png"

// SignatureKey builds the blob key for a signature image.
func SignatureKey(ownerID, name string) string {
	return fmt.Sprintf("%s/%s/%s.png", SignaturePrefix, ownerID, name)
}

// OwnerFromSignatureKey extracts the owner ID from a key of the form signatures/<owner_id>/<name>.
func OwnerFromSignatureKey(key string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(key), "/")
	if len(parts) != 3 || parts[0] != SignaturePrefix {
		return "", false
	}
	if parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}
