package sendgrid_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	sendgrid_client "github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "SG.storefront-test"
	testFromEmail = "orders@storefront.test"
	testFromName  = "Storefront"
)

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailSend struct {
	Personalizations []struct {
		To      []mailAddress `json:"to"`
		Cc      []mailAddress `json:"cc,omitempty"`
		Bcc     []mailAddress `json:"bcc,omitempty"`
		Subject string        `json:"subject"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// mailbox records what the fake SendGrid endpoint received.
type mailbox struct {
	mu      sync.Mutex
	auth    string
	message mailSend
	calls   int
}

func (m *mailbox) last() (mailSend, string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.message, m.auth, m.calls
}

func newSendGridServer(t *testing.T, status int, body string) (*httptest.Server, *mailbox) {
	t.Helper()

	box := &mailbox{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		box.mu.Lock()
		box.calls++
		box.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&box.message)
		box.mu.Unlock()

		w.WriteHeader(status)
		if body != "" {
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, box
}

func newTestEmailService(baseURL string) sendgrid_client.EmailService {
	svc := sendgrid_client.NewEmailService(testAPIKey, testFromEmail, testFromName)
	svc.GetSendGridClient().Request.BaseURL = baseURL

	return svc
}

func TestEmailService_Send(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.EmailNotificationRequest
		status        int
		body          string
		expectedError string
		check         func(t *testing.T, msg mailSend)
	}{
		{
			name: "Success - Order Shipped Notification",
			req: &models.EmailNotificationRequest{
				To:      "jane@example.com",
				Subject: "Order 1f0c2a9b is now shipped",
				Content: "Your order has been updated to shipped. Carrier: DHL, tracking number: JD014600003.",
			},
			status: http.StatusAccepted,
			check: func(t *testing.T, msg mailSend) {
				require.Len(t, msg.Personalizations, 1)
				assert.Equal(t, "jane@example.com", msg.Personalizations[0].To[0].Email)
				assert.Equal(t, "Order 1f0c2a9b is now shipped", msg.Personalizations[0].Subject)
				assert.Equal(t, mailAddress{Email: testFromEmail, Name: testFromName}, msg.From)

				require.Len(t, msg.Content, 1)
				assert.Equal(t, "text/plain", msg.Content[0].Type)
				assert.Contains(t, msg.Content[0].Value, "JD014600003")
			},
		},
		{
			name: "Success - Payment Confirmed With Receipt",
			req: &models.EmailNotificationRequest{
				To:          "jane@example.com",
				Subject:     "Payment received for order 1f0c2a9b",
				Content:     "We received your payment of 42.50. Invoice INV-20261019-1f0c2a9b has been issued.",
				HTMLContent: "<p>Invoice <strong>INV-20261019-1f0c2a9b</strong></p>",
			},
			status: http.StatusAccepted,
			check: func(t *testing.T, msg mailSend) {
				require.Len(t, msg.Content, 2)
				assert.Equal(t, "text/plain", msg.Content[0].Type)
				assert.Contains(t, msg.Content[0].Value, "42.50")
				assert.Equal(t, "text/html", msg.Content[1].Type)
				assert.Contains(t, msg.Content[1].Value, "INV-20261019-1f0c2a9b")
			},
		},
		{
			name: "Success - Admin Email With Copies",
			req: &models.EmailNotificationRequest{
				To:      "customer@example.com",
				CC:      []string{"support@storefront.test"},
				BCC:     []string{"audit@storefront.test", "ops@storefront.test"},
				Subject: "About your refund",
				Content: "Your refund has been processed.",
			},
			status: http.StatusAccepted,
			check: func(t *testing.T, msg mailSend) {
				require.Len(t, msg.Personalizations, 1)
				p := msg.Personalizations[0]
				require.Len(t, p.Cc, 1)
				assert.Equal(t, "support@storefront.test", p.Cc[0].Email)
				require.Len(t, p.Bcc, 2)
				assert.Equal(t, "ops@storefront.test", p.Bcc[1].Email)
			},
		},
		{
			name:          "Failure - Recipient Rejected",
			req:           &models.EmailNotificationRequest{To: "nobody@invalid", Subject: "Order update", Content: "x"},
			status:        http.StatusBadRequest,
			body:          `{"errors":[{"message":"Does not contain a valid address."}]}`,
			expectedError: "status code: 400",
		},
		{
			name:          "Failure - Provider Unavailable",
			req:           &models.EmailNotificationRequest{To: "jane@example.com", Subject: "Order update", Content: "x"},
			status:        http.StatusServiceUnavailable,
			expectedError: "status code: 503",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			srv, box := newSendGridServer(t, tc.status, tc.body)
			svc := newTestEmailService(srv.URL)

			// Act
			err := svc.Send(t.Context(), tc.req)

			// Assert
			if tc.expectedError == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
			}

			msg, auth, calls := box.last()
			assert.Equal(t, 1, calls)
			assert.Equal(t, "Bearer "+testAPIKey, auth)

			if tc.check != nil {
				tc.check(t, msg)
			}
		})
	}
}

func TestEmailService_SendUnreachable(t *testing.T) {
	t.Run("Cancelled Context", func(t *testing.T) {
		// Arrange
		srv, box := newSendGridServer(t, http.StatusAccepted, "")
		svc := newTestEmailService(srv.URL)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		// Act
		err := svc.Send(ctx, &models.EmailNotificationRequest{To: "jane@example.com", Subject: "s", Content: "c"})

		// Assert
		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "failed to reach sendgrid")

		_, _, calls := box.last()
		assert.Zero(t, calls)
	})

	t.Run("Server Down", func(t *testing.T) {
		// Arrange
		srv, _ := newSendGridServer(t, http.StatusAccepted, "")
		svc := newTestEmailService(srv.URL)
		srv.Close()

		// Act
		err := svc.Send(t.Context(), &models.EmailNotificationRequest{To: "jane@example.com", Subject: "s", Content: "c"})

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reach sendgrid")
	})
}
