package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedContentTypes defines the whitelist of allowed content types for
// receipt uploads. SVG is excluded: it can carry scripts and is never a
// legitimate receipt format.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// isAllowedContentType checks if a content type is in the whitelist
func isAllowedContentType(contentType string) bool {
	return AllowedContentTypes[contentType]
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3 or compatible).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey string, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	MaxAttachmentsPerTransaction int
	UploadURLExpiry              time.Duration
	DownloadURLExpiry            time.Duration
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		MaxAttachmentsPerTransaction: 10,
		UploadURLExpiry:              15 * time.Minute,
		DownloadURLExpiry:            1 * time.Hour,
	}
}

// AttachmentService handles receipt attachment operations
type AttachmentService struct {
	attachmentRepo  ledger.AttachmentRepository
	transactionRepo ledger.TransactionRepository
	storageService  ObjectStorageService
	config          AttachmentServiceConfig
	logger          *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo ledger.AttachmentRepository,
	transactionRepo ledger.TransactionRepository,
	storageService ObjectStorageService,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo:  attachmentRepo,
		transactionRepo: transactionRepo,
		storageService:  storageService,
		config:          DefaultAttachmentServiceConfig(),
		logger:          logger,
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// InitiateUpload creates the attachment record and returns a presigned upload URL
func (s *AttachmentService) InitiateUpload(
	ctx context.Context,
	transactionID uuid.UUID,
	req InitiateUploadRequest,
) (*InitiateUploadResponse, error) {
	if _, err := s.transactionRepo.FindByID(ctx, transactionID); err != nil {
		return nil, err
	}

	count, err := s.attachmentRepo.CountByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxAttachmentsPerTransaction) {
		return nil, shared.NewDomainError("ATTACHMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d attachments per transaction allowed", s.config.MaxAttachmentsPerTransaction))
	}

	if !isAllowedContentType(req.ContentType) {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: images and PDF.", req.ContentType))
	}

	storageKey := s.generateStorageKey(transactionID, req.FileName)

	attachment, err := ledger.NewTransactionAttachment(
		transactionID,
		req.FileName,
		req.FileSize,
		req.ContentType,
		storageKey,
	)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(
		ctx,
		storageKey,
		req.ContentType,
		s.config.UploadURLExpiry,
	)
	if err != nil {
		// Clean up the attachment record if URL generation fails
		_ = s.attachmentRepo.Delete(ctx, attachment.ID)
		s.logger.Error("Failed to generate upload URL",
			zap.String("storage_key", storageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		StorageKey:   storageKey,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetByID retrieves an attachment by ID
func (s *AttachmentService) GetByID(ctx context.Context, id uuid.UUID) (*AttachmentResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToAttachmentResponse(attachment)
	s.enrichWithURL(ctx, &response, attachment.StorageKey)
	return &response, nil
}

// ListByTransaction retrieves all attachments of a transaction
func (s *AttachmentService) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]AttachmentResponse, error) {
	attachments, err := s.attachmentRepo.FindByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	responses := ToAttachmentListResponses(attachments)
	for i := range attachments {
		s.enrichWithURL(ctx, &responses[i], attachments[i].StorageKey)
	}
	return responses, nil
}

// GetDownloadURL generates a presigned download URL for an attachment
func (s *AttachmentService) GetDownloadURL(ctx context.Context, id uuid.UUID) (*DownloadURLResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate download URL",
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &DownloadURLResponse{
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

// Delete deletes an attachment and its storage object
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	exists, err := s.storageService.ObjectExists(ctx, attachment.StorageKey)
	if err != nil {
		return shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to check storage object")
	}
	if exists {
		if err := s.storageService.DeleteObject(ctx, attachment.StorageKey); err != nil {
			return shared.NewDomainError("STORAGE_DELETE_FAILED", "Failed to delete storage object")
		}
	}

	return s.attachmentRepo.Delete(ctx, id)
}

// generateStorageKey generates a unique storage key for a receipt file
func (s *AttachmentService) generateStorageKey(transactionID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("transactions/%s/attachments/%s%s", transactionID, uuid.New(), ext)
}

// enrichWithURL adds a presigned download URL to an attachment response.
// URL generation failures leave the URL empty rather than failing the read.
func (s *AttachmentService) enrichWithURL(ctx context.Context, response *AttachmentResponse, storageKey string) {
	url, _, err := s.storageService.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to generate download URL for attachment",
			zap.String("storage_key", storageKey),
			zap.Error(err))
		return
	}
	response.URL = url
}
