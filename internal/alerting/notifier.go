package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries the context of one model-divergence alert: the two
// valuation methods drifted apart beyond the configured tolerance.
type Notification struct {
	Bucket        time.Time
	ValuationDate time.Time
	Spot          decimal.Decimal
	MCPrice       decimal.Decimal
	AnalyticPrice decimal.Decimal
	DivergencePct decimal.Decimal
	ThresholdPct  decimal.Decimal
	Policy        string
	Channels      []string
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls the sendMessage API with a rendered text payload.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Time("bucket", note.Bucket).
		Str("divergence_pct", note.DivergencePct.String()).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("divergence alert dispatched")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Chooser Model Divergence]\n")
	builder.WriteString(fmt.Sprintf("Bucket: %s UTC\n", note.Bucket.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Valuation date: %s\n", note.ValuationDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Spot: %s\n", note.Spot.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Monte Carlo: %s\n", note.MCPrice.StringFixed(4)))
	builder.WriteString(fmt.Sprintf("Analytic: %s\n", note.AnalyticPrice.StringFixed(4)))
	builder.WriteString(fmt.Sprintf("Divergence: %s%% (threshold %s%%)\n", note.DivergencePct.StringFixed(3), note.ThresholdPct.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("Policy: %s\n", note.Policy))
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
