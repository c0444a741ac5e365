package ledger

import (
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// InitiateUploadRequest represents a request to start a receipt upload
type InitiateUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
	ContentType string `json:"content_type" binding:"required"`
}

// InitiateUploadResponse carries the presigned URL the client uploads to
type InitiateUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	StorageKey   string    `json:"storage_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachmentResponse represents an attachment in API responses
type AttachmentResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	ContentType   string    `json:"content_type"`
	URL           string    `json:"url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToAttachmentResponse converts a domain attachment to a response DTO
func ToAttachmentResponse(attachment *ledger.TransactionAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:            attachment.ID,
		TransactionID: attachment.TransactionID,
		FileName:      attachment.FileName,
		FileSize:      attachment.FileSize,
		ContentType:   attachment.ContentType,
		CreatedAt:     attachment.CreatedAt,
		UpdatedAt:     attachment.UpdatedAt,
	}
}

// ToAttachmentListResponses converts a list of domain attachments to response DTOs
func ToAttachmentListResponses(attachments []ledger.TransactionAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		responses[i] = ToAttachmentResponse(&attachments[i])
	}
	return responses
}
