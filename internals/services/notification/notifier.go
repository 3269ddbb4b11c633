package notification

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"schoolku_backend/internals/configs"
)

// Message email sederhana; HTML opsional.
type Message struct {
	To       []mail.Address
	Subject  string
	Text     string
	HTML     string
	Category string // receipt, recharge, ...
}

func (m Message) HasRecipients() bool {
	for _, to := range m.To {
		if strings.TrimSpace(to.Address) != "" {
			return true
		}
	}
	return false
}

// Notifier kolaborator eksternal (email). Implementasi tidak boleh retry tanpa batas.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatch fire-and-forget: kegagalan hanya di-log, tidak pernah naik ke caller.
// Pemanggil boleh menunggu channel done (dipakai di test).
func Dispatch(n Notifier, msg Message) <-chan struct{} {
	done := make(chan struct{})
	if n == nil || !msg.HasRecipients() {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.Send(ctx, msg); err != nil {
			configs.LogError(configs.GetLogger(), "notification", "Dispatch", msg.Category, msg.Subject, err)
		}
	}()
	return done
}

/* ===============================
   Log-only notifier (dev / tanpa SENDGRID_API_KEY)
=================================*/

type logNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) Notifier {
	if logger == nil {
		logger = configs.GetLogger()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Send(_ context.Context, msg Message) error {
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.Address)
	}
	n.logger.WithFields(logrus.Fields{
		"module":   "notification",
		"to":       strings.Join(to, ","),
		"category": msg.Category,
	}).Info(msg.Subject)
	return nil
}

// NewFromConfig: SendGrid kalau key ada, selain itu log saja.
func NewFromConfig() Notifier {
	key := configs.Conf.GetString("SENDGRID_API_KEY")
	if key == "" {
		return NewLogNotifier(nil)
	}
	return NewSendgridNotifier(key, configs.GetEnv("APP_NAME"), configs.GetEnv("MAIL_FROM"))
}
