package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	log "github.com/sirupsen/logrus"
)

type MailHandler struct {
	mailer interfaces.Mailer
}

func NewMailHandler(mailer interfaces.Mailer) *MailHandler {
	return &MailHandler{mailer: mailer}
}

func (h *MailHandler) HandleMessage(_ context.Context, key, value []byte) error {
	var event dto.NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("invalid event payload: %s", string(value))
		return err
	}
	if event.To == "" {
		log.WithField("type", event.Type).Debug("event has no recipient - skipped")
		return nil
	}

	subject, body, err := Render(event)
	if err != nil {
		return fmt.Errorf("render %s: %w", string(key), err)
	}

	log.WithFields(log.Fields{"type": event.Type, "to": event.To}).Info("[MAIL] sending")
	return h.mailer.Send(event.To, subject, body)
}
