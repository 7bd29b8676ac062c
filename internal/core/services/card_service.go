package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit actions written for membership cards
const (
	AuditRegenerateCard = "REGENERATE_MEMBERSHIP_CARD"
)

const qrCodeSize = 256

// CardHolder is the profile summary printed on a card
type CardHolder struct {
	FullName   string          `json:"fullName"`
	AlumniID   *string         `json:"alumniId"`
	BatchYear  *int            `json:"batchYear"`
	Department *string         `json:"department"`
	UserType   domain.UserType `json:"userType"`
	PhotoURL   *string         `json:"photoUrl"`
}

// CardView is a membership card with its holder
type CardView struct {
	*models.MembershipCard
	PublicURL string     `json:"publicUrl"`
	Holder    CardHolder `json:"holder"`
}

// CardService issues membership cards and manages the card template
type CardService struct {
	db            *gorm.DB
	blobs         BlobStore
	audit         *AuditService
	publicBaseURL string
	now           func() time.Time
}

// NewCardService creates a new card service. publicBaseURL is the origin
// encoded into QR codes.
func NewCardService(db *gorm.DB, blobs BlobStore, audit *AuditService, publicBaseURL string) *CardService {
	return &CardService{
		db:            db,
		blobs:         blobs,
		audit:         audit,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// GetOrCreate returns the actor's card, issuing one on first use
func (s *CardService) GetOrCreate(ctx context.Context, actor domain.Actor) (*CardView, error) {
	if actor.IsNonAlumni() {
		return nil, domain.ErrCardNotAllowed
	}

	user, err := s.holder(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	cards := repositories.NewCardRepository(s.db)
	card, err := cards.GetByUserID(ctx, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if card == nil {
		card = &models.MembershipCard{UserID: actor.UserID, CardStatus: models.CardStatusActive}
		if err := s.issue(card); err != nil {
			return nil, err
		}
		if err := cards.Create(ctx, card); err != nil {
			return nil, err
		}
		zap.L().Info("🪪 Membership card issued", zap.Uint("user_id", actor.UserID), zap.String("card_number", card.CardNumber))
	}

	return s.view(card, user), nil
}

// Regenerate issues a new card number and public token. QR codes printed
// from the previous token stop resolving.
func (s *CardService) Regenerate(ctx context.Context, actor domain.Actor) (*CardView, error) {
	if actor.IsNonAlumni() {
		return nil, domain.ErrCardNotAllowed
	}

	user, err := s.holder(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	var card *models.MembershipCard
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cards := repositories.NewCardRepository(tx)
		current, err := cards.GetByUserID(ctx, actor.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = &models.MembershipCard{UserID: actor.UserID, CardStatus: models.CardStatusActive}
		case err != nil:
			return err
		}

		previous := current.CardNumber
		if err := s.issue(current); err != nil {
			return err
		}
		now := s.now()
		current.LastRegeneratedAt = &now

		if current.ID == 0 {
			err = cards.Create(ctx, current)
		} else {
			err = cards.Update(ctx, current)
		}
		if err != nil {
			return err
		}
		card = current

		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditRegenerateCard,
			EntityType: EntityMembershipCard,
			EntityID:   current.ID,
			OldValues:  map[string]string{"cardNumber": previous},
			NewValues:  map[string]string{"cardNumber": current.CardNumber},
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("🔄 Membership card regenerated", zap.Uint("user_id", actor.UserID), zap.String("card_number", card.CardNumber))
	return s.view(card, user), nil
}

// GetTemplate returns the card template, or nil when none is set
func (s *CardService) GetTemplate(ctx context.Context) (*models.CardTemplate, error) {
	template, err := repositories.NewCardRepository(s.db).GetTemplate(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

// UploadTemplate replaces the card template image
func (s *CardService) UploadTemplate(ctx context.Context, actor domain.Actor, contentType string, size int64, body io.Reader) (*models.CardTemplate, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if s.blobs == nil {
		return nil, domain.ErrStorageDisabled
	}
	if err := checkImage(contentType, size); err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, "card-templates", contentType, body)
	if err != nil {
		return nil, err
	}

	cards := repositories.NewCardRepository(s.db)
	template, err := s.GetTemplate(ctx)
	if err != nil {
		return nil, err
	}
	previous := ""
	if template == nil {
		template = &models.CardTemplate{}
	} else {
		previous = template.TemplateURL
	}

	uploadedBy := actor.UserID
	template.TemplateURL = url
	template.UploadedByID = &uploadedBy
	template.UploadedAt = s.now()
	if err := cards.SaveTemplate(ctx, template); err != nil {
		return nil, err
	}

	if previous != "" {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			zap.L().Warn("⚠️ Failed to delete previous card template", zap.String("url", previous), zap.Error(err))
		}
	}
	return template, nil
}

// DeleteTemplate removes the card template
func (s *CardService) DeleteTemplate(ctx context.Context, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	template, err := s.GetTemplate(ctx)
	if err != nil {
		return err
	}
	if err := repositories.NewCardRepository(s.db).DeleteTemplates(ctx); err != nil {
		return err
	}
	if template != nil && s.blobs != nil {
		if err := s.blobs.Delete(ctx, template.TemplateURL); err != nil {
			zap.L().Warn("⚠️ Failed to delete card template object", zap.String("url", template.TemplateURL), zap.Error(err))
		}
	}
	return nil
}

// PublicURL is the unauthenticated profile address behind a card's QR code
func (s *CardService) PublicURL(token string) string {
	return fmt.Sprintf("%s/api/v1/public/members/%s", s.publicBaseURL, token)
}

func (s *CardService) holder(ctx context.Context, userID uint) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db).GetByIDWithProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if user.Profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return user, nil
}

// issue assigns a fresh card number, public token and QR image
func (s *CardService) issue(card *models.MembershipCard) error {
	card.CardNumber = GenerateCardNumber(s.now())
	card.PublicToken = uuid.NewString()
	card.QRCodeData = s.PublicURL(card.PublicToken)

	png, err := qrcode.Encode(card.QRCodeData, qrcode.Medium, qrCodeSize)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}
	card.QRCodePNG = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return nil
}

func (s *CardService) view(card *models.MembershipCard, user *models.User) *CardView {
	p := user.Profile
	return &CardView{
		MembershipCard: card,
		PublicURL:      card.QRCodeData,
		Holder: CardHolder{
			FullName:   p.FullName,
			AlumniID:   p.AlumniID,
			BatchYear:  p.BatchYear,
			Department: p.Department,
			UserType:   user.UserType,
			PhotoURL:   p.ProfilePhotoURL,
		},
	}
}

// GenerateCardNumber renders QF-<time base36>-<6 random chars>
func GenerateCardNumber(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("QF-%s-%s", stamp, random)
}
