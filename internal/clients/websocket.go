package clients

import (
	"context"

	ws "lendledger/internal/transport/websocket"
)

// WebSocketClient pushes ledger events to connected dashboard clients.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) NotifyPaymentCollected(ctx context.Context, loanID, paymentID int64, status string) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "payment_collected",
		Channel: "payments",
		Data: map[string]any{
			"loan_id":    loanID,
			"payment_id": paymentID,
			"status":     status,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyPaymentSettled(ctx context.Context, loanID, paymentID int64) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "payment_settled",
		Channel: "payments",
		Data: map[string]any{
			"loan_id":    loanID,
			"payment_id": paymentID,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyScheduleExtended(ctx context.Context, loanID int64, added int) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "schedule_extended",
		Channel: "payments",
		Data: map[string]any{
			"loan_id": loanID,
			"added":   added,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyReportProgress(ctx context.Context, reportID string, progress float64, stage string) error {
	if c.hub == nil {
		return nil
	}
	data := map[string]any{
		"id":       reportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "report_progress",
		Channel: "reports",
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyReportComplete(ctx context.Context, reportID, url, filename string) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "report_complete",
		Channel: "reports",
		Data: map[string]any{
			"id":       reportID,
			"url":      url,
			"filename": filename,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyReportFailed(ctx context.Context, reportID, message string) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(&ws.Message{
		Type:    "report_failed",
		Channel: "reports",
		Data: map[string]any{
			"id":    reportID,
			"error": message,
		},
	})
	return nil
}
