package notification

import (
	"context"
	"fmt"
	"strings"

	"traceaq/models"

	"go.uber.org/zap"
)

// FormatAmount renders minor units as a price, e.g. 9800 usd -> "$98.00".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	value := fmt.Sprintf("%d.%02d", amount/100, amount%100)
	if strings.EqualFold(currency, "usd") {
		return sign + "$" + value
	}
	return sign + value + " " + strings.ToUpper(currency)
}

func ResetCodeMessage(from string, p models.ResetCodePayload) models.MailMessage {
	return models.MailMessage{
		From:    from,
		To:      p.Email,
		Subject: "Your Trace AQ password reset code",
		Body: fmt.Sprintf("Your password reset code is %s.\n\nIt expires in 15 minutes. "+
			"If you did not ask for it, you can ignore this email.", p.Code),
	}
}

func SubscriptionMessage(from string, p models.SubscriptionPayload) models.MailMessage {
	name := p.FullName
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("Hi %s,\n\nThanks for subscribing to Trace AQ. We received your payment of %s (order %s).",
		name, FormatAmount(p.Amount, p.Currency), p.OrderID)
	if p.IsResearcher {
		body += "\n\nYour researcher pricing has been applied."
	}
	return models.MailMessage{
		From:    from,
		To:      p.Email,
		Subject: "Your Trace AQ subscription is active",
		Body:    body,
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg models.MailMessage) error {
	s.Logger.Info("Email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("bodyBytes", len(msg.Body)),
	)
	return nil
}
