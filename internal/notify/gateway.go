package notify

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

// DeliveryStatus is the outcome of a single notification attempt.
type DeliveryStatus string

const (
	StatusSent DeliveryStatus = "sent"
	// StatusNotConfigured means the channel has no credentials. It is
	// a recognized disabled state, not an error.
	StatusNotConfigured DeliveryStatus = "not_configured"
	StatusFailed        DeliveryStatus = "failed"
)

// DeliveryResult reports what happened to one message. Detail carries
// the human-readable status string surfaced to the caller.
type DeliveryResult struct {
	Status DeliveryStatus
	Detail string
}

func (r DeliveryResult) String() string { return r.Detail }

func sent(detail string) DeliveryResult {
	return DeliveryResult{Status: StatusSent, Detail: detail}
}

func notConfigured(detail string) DeliveryResult {
	return DeliveryResult{Status: StatusNotConfigured, Detail: detail}
}

func failed(detail string) DeliveryResult {
	return DeliveryResult{Status: StatusFailed, Detail: detail}
}

// Message is one outbound notification. AttachmentPath names a file to
// attach (email only); SMS messages carry Body alone.
type Message struct {
	Subject        string
	Body           string
	AttachmentPath string
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to string, msg Message) DeliveryResult
	Configured() bool
}

// SMSSender delivers a single text message.
type SMSSender interface {
	Send(ctx context.Context, to, body string) DeliveryResult
	Configured() bool
}

// Notifier is the gateway contract the workflow and reminder worker
// depend on.
type Notifier interface {
	Notify(ctx context.Context, channel, destination string, msg Message) DeliveryResult
	SMSConfigured() bool
}

// Gateway fans a notification out to the right channel sender. It
// never lets a transport error or panic reach the caller; every
// failure mode comes back as a DeliveryResult.
type Gateway struct {
	email  EmailSender
	sms    SMSSender
	logger *logger.Logger
}

func NewGateway(email EmailSender, sms SMSSender, log *logger.Logger) *Gateway {
	return &Gateway{
		email:  email,
		sms:    sms,
		logger: log.WithComponent("notify"),
	}
}

func (g *Gateway) Notify(ctx context.Context, channel, destination string, msg Message) (res DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Sprintf("%s error: %v", channel, r))
			g.logger.ZL.Error().Interface("panic", r).Str("channel", channel).Msg("notification sender panicked")
		}
	}()

	switch channel {
	case model.ChannelEmail:
		res = g.email.Send(ctx, destination, msg)
	case model.ChannelSMS:
		res = g.sms.Send(ctx, destination, msg.Body)
	default:
		res = failed(fmt.Sprintf("unsupported channel: %s", channel))
	}

	switch res.Status {
	case StatusFailed:
		g.logger.ZL.Warn().Str("channel", channel).Str("detail", res.Detail).Msg("notification failed")
	case StatusSent:
		g.logger.ZL.Info().Str("channel", channel).Msg("notification sent")
	}
	return res
}

func (g *Gateway) SMSConfigured() bool {
	return g.sms != nil && g.sms.Configured()
}

var _ Notifier = (*Gateway)(nil)
