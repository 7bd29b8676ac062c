package services

import (
	"context"
	"encoding/json"
	"strconv"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Audit entity types
const (
	EntityLoanApplication = "LoanApplication"
	EntityLoanCategory    = "LoanCategory"
	EntityUser            = "User"
	EntityMembershipCard  = "MembershipCard"
	EntityEvent           = "Event"
)

type requestMetaKey struct{}

// RequestMeta is the client information recorded on audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches client information to ctx
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// AuditEntry is one state change to record
type AuditEntry struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   uint
	OldValues  interface{}
	NewValues  interface{}
}

// AuditService writes and reads the append-only audit trail
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends an entry using db, which may be an open transaction so the
// entry commits or rolls back with the change it describes
func (s *AuditService) Record(ctx context.Context, db *gorm.DB, entry AuditEntry) error {
	if db == nil {
		db = s.db
	}

	oldValues, err := snapshot(entry.OldValues)
	if err != nil {
		return err
	}
	newValues, err := snapshot(entry.NewValues)
	if err != nil {
		return err
	}

	meta := requestMetaFrom(ctx)
	log := &models.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   strconv.FormatUint(uint64(entry.EntityID), 10),
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  meta.IPAddress,
		UserAgent:  truncate(meta.UserAgent, 255),
	}
	if entry.UserID != 0 {
		userID := entry.UserID
		log.UserID = &userID
	}

	return repositories.NewAuditRepository(db).Create(ctx, log)
}

// History lists the audit trail of one entity, oldest first
func (s *AuditService) History(ctx context.Context, entityType string, entityID uint) ([]*models.AuditLog, error) {
	return repositories.NewAuditRepository(s.db).
		ListByEntity(ctx, entityType, strconv.FormatUint(uint64(entityID), 10))
}

func snapshot(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
