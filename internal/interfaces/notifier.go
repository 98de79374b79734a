package interfaces

import (
	"context"

	"github.com/SundayYogurt/bursary_service/internal/dto"
)

// Notifier delivers events on a best-effort basis. Notify must not block the
// caller for long and never reports failure; failures are logged.
type Notifier interface {
	Notify(ctx context.Context, event dto.NotificationEvent)
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*dto.PaymentVerification, error)
}
