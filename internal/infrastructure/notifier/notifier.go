package notifier

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// SendCallback posts the order status to the business callback URL.
// Fire-and-forget: callbacks never participate in the reconciliation
// transaction and a failed delivery is only logged.
func SendCallback(callbackURL string, payload CallbackPayload) {
	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal callback", "error", err.Error())
			return
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewBuffer(body))
		if err != nil {
			slog.Error("failed to create callback request", "error", err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			slog.Error("callback failed", "url", callbackURL, "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			slog.Info("callback sent", "url", callbackURL)
		} else {
			slog.Warn("callback returned non-2xx", "url", callbackURL, "status", resp.StatusCode)
		}
	}()
}
