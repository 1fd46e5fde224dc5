package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"threat-sentinel/internal/model"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const defaultTelegramAPI = "https://api.telegram.org"

type TelegramNotifier struct {
	botToken        string
	chatID          string
	parseMode       string
	enabled         bool
	apiURL          string
	maxRetries      int
	retryDelay      time.Duration
	messageTemplate *template.Template
	client          *http.Client
	breaker         *gobreaker.CircuitBreaker[struct{}]
	logger          *logrus.Logger
}

type TelegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func NewTelegramNotifier(botToken, chatID, parseMode string, enabled bool, logger *logrus.Logger) *TelegramNotifier {
	return NewTelegramNotifierWithTemplate(botToken, chatID, parseMode, enabled, "", logger)
}

func NewTelegramNotifierWithTemplate(botToken, chatID, parseMode string, enabled bool, messageTemplate string, logger *logrus.Logger) *TelegramNotifier {
	tn := &TelegramNotifier{
		botToken:   botToken,
		chatID:     chatID,
		parseMode:  parseMode,
		enabled:    enabled,
		apiURL:     defaultTelegramAPI,
		maxRetries: 3,
		retryDelay: time.Second,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	tn.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Telegram circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	if strings.TrimSpace(messageTemplate) != "" {
		funcMap := template.FuncMap{
			"formatTime": func(t time.Time, layout string) string {
				return t.Format(layout)
			},
		}
		tmpl, err := template.New("telegram_message").Funcs(funcMap).Parse(messageTemplate)
		if err != nil {
			logger.Warnf("Failed to parse Telegram message template: %v, using default format", err)
		} else {
			tn.messageTemplate = tmpl
		}
	}

	return tn
}

// SetAPIURL points the notifier at another Bot API endpoint
func (tn *TelegramNotifier) SetAPIURL(url string) {
	tn.apiURL = strings.TrimRight(url, "/")
}

// SetRetry overrides the retry policy of SendAlert
func (tn *TelegramNotifier) SetRetry(maxRetries int, delay time.Duration) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	tn.maxRetries = maxRetries
	tn.retryDelay = delay
}

func (tn *TelegramNotifier) Name() string {
	return "telegram"
}

// SendAlert retries failed deliveries with a growing delay. Cancelling ctx
// aborts both the request in flight and any pending retry.
func (tn *TelegramNotifier) SendAlert(ctx context.Context, alert model.ThreatAlert) error {
	if !tn.enabled {
		tn.logger.Debug("Telegram notifier is disabled, skipping alert")
		return nil
	}

	message := tn.formatAlertMessage(alert)

	for i := 0; i < tn.maxRetries; i++ {
		_, err := tn.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, tn.sendMessage(ctx, message)
		})
		if err == nil {
			return nil
		}

		tn.logger.Warnf("Failed to send alert (attempt %d/%d): %v", i+1, tn.maxRetries, err)

		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("telegram delivery suspended: %w", err)
		}
		if i < tn.maxRetries-1 {
			timer := time.NewTimer(time.Duration(i+1) * tn.retryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("telegram delivery cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to send alert after %d attempts", tn.maxRetries)
}

func (tn *TelegramNotifier) formatAlertMessage(alert model.ThreatAlert) string {
	if tn.messageTemplate != nil {
		var buf bytes.Buffer
		err := tn.messageTemplate.Execute(&buf, alert)
		if err != nil {
			tn.logger.Warnf("Failed to execute message template: %v, using default format", err)
		} else {
			return buf.String()
		}
	}

	timestamp := alert.Timestamp.Format("2006-01-02 15:04:05")

	return fmt.Sprintf("ALERT FIRING: Threat Detected\n\n"+
		"rule: %s\n"+
		"time: %s\n"+
		"severity: %s\n"+
		"source: %s\n"+
		"destination: %s\n"+
		"description: %s\n"+
		"action: %s",
		alert.Rule,
		timestamp,
		alert.Severity,
		alert.SourceIP,
		alert.DestinationIP,
		alert.Description,
		alert.Action)
}

func (tn *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", tn.apiURL, tn.botToken)

	// Markdown modes choke on addresses and rule names, send those as plain text
	parseMode := ""
	if tn.parseMode != "" && tn.parseMode != "Markdown" && tn.parseMode != "MarkdownV2" {
		parseMode = tn.parseMode
	}

	message := TelegramMessage{
		ChatID:    tn.chatID,
		Text:      text,
		ParseMode: parseMode,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := tn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var telegramResp TelegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("telegram API error: %s", telegramResp.Description)
	}

	tn.logger.Infof("Alert sent to Telegram successfully")
	return nil
}

func (tn *TelegramNotifier) SendTestMessage() error {
	if !tn.enabled {
		return fmt.Errorf("telegram notifier is disabled")
	}

	message := "Test Message\n\nThreat Sentinel is working correctly!"
	return tn.sendMessage(context.Background(), message)
}

func (tn *TelegramNotifier) IsEnabled() bool {
	return tn.enabled
}
