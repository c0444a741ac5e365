package ledger

import (
	"strings"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentFileSize is the maximum allowed receipt file size (20MB)
const MaxAttachmentFileSize = 20 * 1024 * 1024

// TransactionAttachment is a receipt or invoice file attached to a
// transaction. The file body lives in object storage under StorageKey;
// this entity tracks the metadata.
type TransactionAttachment struct {
	shared.BaseEntity
	TransactionID uuid.UUID
	FileName      string
	FileSize      int64
	ContentType   string
	StorageKey    string
}

// NewTransactionAttachment creates attachment metadata for an uploaded file
func NewTransactionAttachment(transactionID uuid.UUID, fileName string, fileSize int64, contentType, storageKey string) (*TransactionAttachment, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	if fileSize <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if fileSize > MaxAttachmentFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum allowed size")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	return &TransactionAttachment{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		FileName:      fileName,
		FileSize:      fileSize,
		ContentType:   contentType,
		StorageKey:    storageKey,
	}, nil
}
