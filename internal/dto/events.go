package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationReceived      = "application.received"
	EventApplicationStatusChanged = "application.status_changed"
	EventApplicationDisbursed     = "application.disbursed"
	EventAdminRegistered          = "admin.registered"
	EventAdminStatusChanged       = "admin.status_changed"
	EventDonationVerified         = "donation.verified"
)

// NotificationEvent is the message published for the notifier to turn into mail.
type NotificationEvent struct {
	Type       string            `json:"type"`
	To         string            `json:"to"`
	Data       map[string]string `json:"data"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// PaymentVerification is the gateway's answer for one transaction reference.
type PaymentVerification struct {
	Reference string
	Paid      bool
	Failed    bool
	Amount    decimal.Decimal
	PaidAt    *time.Time
	Channel   string
}
