package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Sealbox/server/internal/pkg/helpers"
	"Sealbox/server/internal/pkg/integrity"
	"Sealbox/server/internal/protocol"
	"Sealbox/server/internal/storage"
)

// Store defines the persistence interface
type Store interface {
	SaveDocument(doc *storage.Document) error
	GetDocument(id uuid.UUID) (*storage.Document, error)
	ListDocuments(ownerID int64) ([]*storage.Document, error)
	ReplaceDocumentContent(id uuid.UUID, sealed []byte) error
	RecordVerification(id uuid.UUID, intact bool, verifiedAt int64) error
}

// Service seals, stores and verifies documents
type Service struct {
	store            Store
	log              *helpers.Logger
	now              func() time.Time
	broadcastHandler func(event interface{})
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		log:   helpers.NewLogger("DocumentService"),
		now:   time.Now,
	}
}

// SetBroadcastHandler sets the callback for broadcasting events
func (s *Service) SetBroadcastHandler(handler func(event interface{})) {
	s.broadcastHandler = handler
}

// Seal appends the integrity tag to content and stores the result
func (s *Service) Seal(ctx context.Context, ownerID int64, name string, content, key []byte) (*storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sealed, err := integrity.Seal(content, key)
	if err != nil {
		return nil, err
	}

	doc, err := s.save(ownerID, name, sealed)
	if err != nil {
		return nil, err
	}

	s.log.Info("document sealed", "id", doc.ID, "owner", ownerID, "size", doc.Size)
	s.emit(protocol.EventDocumentSealed, ownerID, map[string]interface{}{
		"id":   doc.ID.String(),
		"name": doc.Name,
		"size": doc.Size,
	})
	return doc, nil
}

// Import stores bytes that were sealed elsewhere. Only the framing is
// checked; whether the tag matches is up to Verify.
func (s *Service) Import(ctx context.Context, ownerID int64, name string, sealed []byte) (*storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, _, err := integrity.Split(sealed); err != nil {
		return nil, err
	}

	doc, err := s.save(ownerID, name, sealed)
	if err != nil {
		return nil, err
	}
	s.log.Info("document imported", "id", doc.ID, "owner", ownerID, "size", doc.Size)
	return doc, nil
}

func (s *Service) save(ownerID int64, name string, sealed []byte) (*storage.Document, error) {
	if name == "" {
		return nil, fmt.Errorf("document name cannot be empty")
	}

	now := s.now().Unix()
	doc := &storage.Document{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Sealed:    sealed,
		Size:      int64(len(sealed)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveDocument(doc); err != nil {
		s.log.Error("failed to save document", err, "owner", ownerID)
		return nil, err
	}
	return doc, nil
}

// Get returns a document of ownerID including its sealed content
func (s *Service) Get(ctx context.Context, ownerID int64, id uuid.UUID) (*storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if err := helpers.ValidateDocumentOwner(doc, ownerID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the documents of ownerID without content
func (s *Service) List(ctx context.Context, ownerID int64) ([]*storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListDocuments(ownerID)
}

// Replace overwrites the stored sealed bytes of a document, e.g. with an
// edited copy, and forgets the previous verification result.
func (s *Service) Replace(ctx context.Context, ownerID int64, id uuid.UUID, sealed []byte) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if _, _, err := integrity.Split(sealed); err != nil {
		return err
	}
	if err := s.store.ReplaceDocumentContent(id, sealed); err != nil {
		return err
	}
	s.log.Info("document content replaced", "id", id, "size", len(sealed))
	return nil
}

// Verify checks a stored document against its tag, records the outcome and
// notifies the owner. A tampered document is a normal result, not an error.
func (s *Service) Verify(ctx context.Context, ownerID int64, id uuid.UUID, key []byte) (*protocol.VerifyResponse, error) {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	intact, err := integrity.Verify(doc.Sealed, key)
	if err != nil {
		return nil, err
	}

	verifiedAt := s.now().Unix()
	if err := s.store.RecordVerification(id, intact, verifiedAt); err != nil {
		s.log.Error("failed to record verification", err, "id", id)
		return nil, err
	}

	eventType := protocol.EventDocumentVerified
	if !intact {
		eventType = protocol.EventTamperDetected
		s.log.Warn("integrity check failed", "id", id, "owner", ownerID)
	}
	s.emit(eventType, ownerID, map[string]interface{}{
		"id":     id.String(),
		"name":   doc.Name,
		"intact": intact,
	})

	return &protocol.VerifyResponse{ID: id.String(), Intact: intact, VerifiedAt: verifiedAt}, nil
}

func (s *Service) emit(eventType string, userID int64, data map[string]interface{}) {
	if s.broadcastHandler == nil {
		return
	}
	s.broadcastHandler(&protocol.WebSocketEvent{
		Type:      eventType,
		UserID:    userID,
		Timestamp: s.now().Unix(),
		Data:      data,
	})
}
