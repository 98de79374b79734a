package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/shopspring/decimal"
)

type verifyData struct {
	Status    string     `json:"status"`
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"` // minor units (kobo)
	Channel   string     `json:"channel"`
	PaidAt    *time.Time `json:"paid_at"`
}

type verifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    verifyData `json:"data"`
}

type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func New(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Verify looks up a transaction by reference.
// Endpoint: GET /transaction/verify/:reference
func (c *Client) Verify(ctx context.Context, reference string) (*dto.PaymentVerification, error) {
	if c.secretKey == "" {
		return nil, errors.New("missing paystack secret key")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, errors.New("missing payment reference")
	}

	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e verifyResponse
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("paystack error (%d): %s", resp.StatusCode, e.Message)
		}
		return nil, fmt.Errorf("paystack http error (%d): %s", resp.StatusCode, string(body))
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack: %s", out.Message)
	}

	ref := out.Data.Reference
	if ref == "" {
		ref = reference
	}
	return &dto.PaymentVerification{
		Reference: ref,
		Paid:      out.Data.Status == "success",
		Failed:    out.Data.Status == "failed" || out.Data.Status == "abandoned" || out.Data.Status == "reversed",
		Amount:    decimal.New(out.Data.Amount, -2),
		PaidAt:    out.Data.PaidAt,
		Channel:   out.Data.Channel,
	}, nil
}
