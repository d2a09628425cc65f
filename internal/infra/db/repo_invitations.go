package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, invite domain.Invitation) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := InvitationModel{
		ID:        invite.ID,
		FirmID:    invite.FirmID,
		Email:     invite.Email,
		Role:      string(invite.Role),
		Token:     invite.Token,
		InvitedBy: invite.InvitedBy,
		Status:    string(invite.Status),
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	if r.db == nil {
		return domain.Invitation{}, errDBUnavailable
	}
	var model InvitationModel
	err := r.db.WithContext(ctx).First(&model, "token = ?", token).Error
	if err != nil {
		return domain.Invitation{}, translateError(err)
	}
	return toInvitation(model), nil
}

func (r *InvitationRepository) ListByFirm(ctx context.Context, firmID string) ([]domain.Invitation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []InvitationModel
	err := r.db.WithContext(ctx).Where("firm_id = ?", firmID).Order("created_at desc").Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Invitation, 0, len(models))
	for _, model := range models {
		out = append(out, toInvitation(model))
	}
	return out, nil
}

// MarkAccepted flips an open invitation to accepted. The status guard in the
// WHERE clause makes concurrent accepts a conflict, not a double accept.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&InvitationModel{}).
		Where("id = ? AND status = ?", inviteID, string(domain.InviteOpen)).
		Updates(map[string]any{"status": string(domain.InviteAccepted), "accepted_at": acceptedAt})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func toInvitation(model InvitationModel) domain.Invitation {
	return domain.Invitation{
		ID:         model.ID,
		FirmID:     model.FirmID,
		Email:      model.Email,
		Role:       domain.Role(model.Role),
		Token:      model.Token,
		InvitedBy:  model.InvitedBy,
		Status:     domain.InvitationStatus(model.Status),
		ExpiresAt:  model.ExpiresAt,
		AcceptedAt: model.AcceptedAt,
		CreatedAt:  model.CreatedAt,
	}
}
