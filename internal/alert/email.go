package alert

import (
	"context"
	"fmt"
	"strings"

	"threat-sentinel/internal/model"

	"github.com/sirupsen/logrus"
)

// EmailConfig is the delivery configuration of an alert email
type EmailConfig struct {
	To      string `yaml:"to" json:"to"`
	From    string `yaml:"from" json:"from"`
	Subject string `yaml:"subject" json:"subject"`
}

// EmailMessage is a fully composed alert email
type EmailMessage struct {
	To      string
	From    string
	Subject string
	Body    string
}

// EmailNotifier composes alert emails and logs them. Delivery is left to an
// external mail relay; nothing is sent from here.
type EmailNotifier struct {
	config EmailConfig
	logger *logrus.Logger
}

func NewEmailNotifier(config EmailConfig, logger *logrus.Logger) *EmailNotifier {
	if config.Subject == "" {
		config.Subject = "Threat alert"
	}
	return &EmailNotifier{
		config: config,
		logger: logger,
	}
}

func (en *EmailNotifier) Name() string {
	return "email"
}

func (en *EmailNotifier) SendAlert(_ context.Context, alert model.ThreatAlert) error {
	if en.config.To == "" {
		return fmt.Errorf("email recipient is not configured")
	}

	msg := en.Compose(alert)
	en.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"from":    msg.From,
		"subject": msg.Subject,
	}).Infof("Email alert:\n%s", msg.Body)
	return nil
}

// Compose renders the email for an alert
func (en *EmailNotifier) Compose(alert model.ThreatAlert) EmailMessage {
	var body strings.Builder
	body.WriteString("Threat Alert\n\n")
	fmt.Fprintf(&body, "Type: %s\n", alert.Rule)
	fmt.Fprintf(&body, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&body, "Description: %s\n", alert.Description)
	fmt.Fprintf(&body, "Payload: %s\n", alert.Payload())
	fmt.Fprintf(&body, "Action: %s\n", alert.Action)
	fmt.Fprintf(&body, "Timestamp: %s\n", alert.Timestamp.Format("2006-01-02 15:04:05"))

	return EmailMessage{
		To:      en.config.To,
		From:    en.config.From,
		Subject: en.config.Subject,
		Body:    body.String(),
	}
}
