package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

const currentUserKey = "currentUser"

// UserLoader resolves the account behind a verified token.
type UserLoader interface {
	Me(ctx context.Context, userID uint) (*domain.User, error)
}

func bearer(ctx *fiber.Ctx) string {
	// cookie first, then Authorization header
	tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))
	if tokenStr == "" {
		tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
	}
	return tokenStr
}

func verify(auth helper.Auth, ctx *fiber.Ctx) error {
	user, err := auth.VerifyToken(bearer(ctx))
	if err != nil {
		return err
	}
	ctx.Locals("userID", uint(user.UserID))
	ctx.Locals("user", user)
	return nil
}

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := verify(auth, ctx); err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}
		return ctx.Next()
	}
}

// UserID returns the id stored by AuthMiddleware, or 0.
func UserID(ctx *fiber.Ctx) uint {
	id, _ := ctx.Locals("userID").(uint)
	return id
}

// CurrentUser returns the account loaded by a role gate.
func CurrentUser(ctx *fiber.Ctx) *domain.User {
	u, _ := ctx.Locals(currentUserKey).(*domain.User)
	return u
}

// RequireUser verifies the token, reloads the account and lets allow decide.
// The account is read on every request so approval changes apply immediately.
func RequireUser(auth helper.Auth, users UserLoader, allow func(*domain.User) error) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := verify(auth, ctx); err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}

		user, err := users.Me(ctx.UserContext(), UserID(ctx))
		if errors.Is(err, services.ErrNotFound) {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if err != nil {
			log.WithField("user_id", UserID(ctx)).Errorf("load current user: %v", err)
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
		}
		if err := allow(user); err != nil {
			return utils.ResponseError(ctx, fiber.StatusForbidden, err.Error())
		}

		ctx.Locals(currentUserKey, user)
		return ctx.Next()
	}
}

func ApplicantOnly(auth helper.Auth, users UserLoader) fiber.Handler {
	return RequireUser(auth, users, func(u *domain.User) error {
		if u.Role != domain.RoleApplicant {
			return errors.New("applicant only")
		}
		return nil
	})
}

func approvedCommittee(u *domain.User) error {
	if !u.IsCommittee() {
		return errors.New("admin only")
	}
	if u.Status != domain.UserStatusApproved {
		return errors.New("account is awaiting approval")
	}
	return nil
}

func ApprovedAdmin(auth helper.Auth, users UserLoader) fiber.Handler {
	return RequireUser(auth, users, approvedCommittee)
}

func SuperAdminOnly(auth helper.Auth, users UserLoader) fiber.Handler {
	return RequireUser(auth, users, func(u *domain.User) error {
		if err := approvedCommittee(u); err != nil {
			return err
		}
		if !u.IsSuperAdmin() {
			return errors.New("super admin only")
		}
		return nil
	})
}

// Guards bundles the per-route gates handlers attach to their routes.
type Guards struct {
	Authenticated fiber.Handler
	Applicant     fiber.Handler
	Admin         fiber.Handler
	SuperAdmin    fiber.Handler
	RateLimit     fiber.Handler
}

func NewGuards(auth helper.Auth, users UserLoader, limiter fiber.Handler) Guards {
	if limiter == nil {
		limiter = func(ctx *fiber.Ctx) error { return ctx.Next() }
	}
	return Guards{
		Authenticated: AuthMiddleware(auth),
		Applicant:     ApplicantOnly(auth, users),
		Admin:         ApprovedAdmin(auth, users),
		SuperAdmin:    SuperAdminOnly(auth, users),
		RateLimit:     limiter,
	}
}
