package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	log "github.com/sirupsen/logrus"
)

// AdminService manages committee accounts. Every method expects a SuperAdmin actor.
type AdminService interface {
	List(ctx context.Context, status string) ([]domain.User, error)
	Create(ctx context.Context, actor *domain.User, input dto.CreateAdminRequest) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id uint, input dto.UpdateAdminRequest) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id uint) error
}

type adminService struct {
	repos    *repository.Repositories
	notifier interfaces.Notifier
	now      func() time.Time
}

func NewAdminService(repos *repository.Repositories, notifier interfaces.Notifier) AdminService {
	return &adminService{repos: repos, notifier: notifier, now: time.Now}
}

func parseCommitteeRole(s string) (domain.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "admin":
		return domain.RoleAdmin, nil
	case "superadmin", "super_admin", "super admin":
		return domain.RoleSuperAdmin, nil
	}
	return "", validationError("role must be Admin or SuperAdmin")
}

func parseUserStatus(s string) (domain.UserStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return domain.UserStatusPending, nil
	case "approved":
		return domain.UserStatusApproved, nil
	case "rejected":
		return domain.UserStatusRejected, nil
	}
	return "", validationError("status must be Pending, Approved or Rejected")
}

func (s *adminService) List(ctx context.Context, status string) ([]domain.User, error) {
	var filter domain.UserStatus
	if strings.TrimSpace(status) != "" {
		st, err := parseUserStatus(status)
		if err != nil {
			return nil, err
		}
		filter = st
	}
	return s.repos.Users.ListCommittee(ctx, filter)
}

func (s *adminService) Create(ctx context.Context, actor *domain.User, input dto.CreateAdminRequest) (*domain.User, error) {
	role, err := parseCommitteeRole(input.Role)
	if err != nil {
		return nil, err
	}
	user, err := newUser(dto.RegisterRequest{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	}, role, domain.UserStatusApproved)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user.ApprovedBy = &actor.ID
	user.ApprovedAt = &now

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, translate(err, "user")
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": role, "actor_id": actor.ID}).Info("committee member created")
	return user, nil
}

// findCommittee loads a non-applicant user.
func findCommittee(ctx context.Context, repo repository.UserRepository, id uint) (*domain.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	if !user.IsCommittee() {
		return nil, notFound("user")
	}
	return user, nil
}

func (s *adminService) Update(ctx context.Context, actor *domain.User, id uint, input dto.UpdateAdminRequest) (*domain.User, error) {
	if input.Role == nil && input.Status == nil {
		return nil, validationError("nothing to update")
	}

	var (
		user          *domain.User
		statusChanged bool
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		user, err = findCommittee(ctx, tx.Users, id)
		if err != nil {
			return err
		}

		var audits []*domain.AuditLog
		if input.Role != nil {
			role, err := parseCommitteeRole(*input.Role)
			if err != nil {
				return err
			}
			if user.ID == actor.ID && role != domain.RoleSuperAdmin {
				return forbidden("you cannot demote yourself")
			}
			if role != user.Role {
				audits = append(audits, &domain.AuditLog{
					ActorID: actor.ID, Action: domain.AuditActionUserRole, Entity: "user", EntityID: user.ID,
					Details: datatypes.JSONMap{"from": string(user.Role), "to": string(role)},
				})
				user.Role = role
			}
		}
		if input.Status != nil {
			status, err := parseUserStatus(*input.Status)
			if err != nil {
				return err
			}
			if user.ID == actor.ID && status != domain.UserStatusApproved {
				return forbidden("you cannot change your own approval status")
			}
			if status != user.Status {
				audits = append(audits, &domain.AuditLog{
					ActorID: actor.ID, Action: domain.AuditActionUserStatus, Entity: "user", EntityID: user.ID,
					Details: datatypes.JSONMap{"from": string(user.Status), "to": string(status)},
				})
				user.Status = status
				statusChanged = true
				if status == domain.UserStatusApproved {
					now := s.now().UTC()
					user.ApprovedBy = &actor.ID
					user.ApprovedAt = &now
				}
			}
		}
		if len(audits) == 0 {
			return nil
		}

		if err := tx.Users.Save(ctx, user); err != nil {
			return err
		}
		for _, a := range audits {
			if err := tx.Audit.Create(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		log.WithFields(log.Fields{"user_id": user.ID, "status": user.Status, "actor_id": actor.ID}).Info("committee member status changed")
		s.notifier.Notify(ctx, dto.NotificationEvent{
			Type: dto.EventAdminStatusChanged,
			To:   user.Email,
			Data: map[string]string{"name": user.DisplayName, "status": string(user.Status)},
		})
	}
	return user, nil
}

func (s *adminService) Delete(ctx context.Context, actor *domain.User, id uint) error {
	if id == actor.ID {
		return forbidden("you cannot delete yourself")
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := findCommittee(ctx, tx.Users, id)
		if err != nil {
			return err
		}
		if err := tx.Users.Delete(ctx, user.ID); err != nil {
			return translate(err, "user")
		}
		return tx.Audit.Create(ctx, &domain.AuditLog{
			ActorID: actor.ID, Action: domain.AuditActionUserDelete, Entity: "user", EntityID: user.ID,
			Details: datatypes.JSONMap{"email": user.Email},
		})
	})
}
