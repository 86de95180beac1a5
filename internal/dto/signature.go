package dto

// UploadSignatureRequest carries a canvas export as a base64 PNG data URL.
type UploadSignatureRequest struct {
	Image string `json:"image" binding:"required"`
}

// UploadSignatureResponse returns the key to pass as signatureRef.
type UploadSignatureResponse struct {
	Key string `json:"key"`
}
