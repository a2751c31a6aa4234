package digest

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("no email recipients")

// Notifier delivers a rendered digest over one channel.
type Notifier interface {
	Name() string
	Deliver(ctx context.Context, d *Digest) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email sends the digest as a single multipart message over SMTP.
type Email struct {
	dialer mailDialer
	from   string
	to     []string
}

type EmailOptions struct {
	Host       string
	Port       int
	Address    string
	Password   string
	Recipients []string
}

// NewEmail uses implicit TLS when Port is 465.
func NewEmail(opts EmailOptions) *Email {
	to := opts.Recipients
	if len(to) == 0 && opts.Address != "" {
		to = []string{opts.Address}
	}
	return &Email{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Address, opts.Password),
		from:   opts.Address,
		to:     to,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Deliver(ctx context.Context, d *Digest) error {
	if len(e.to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to...)
	m.SetHeader("Subject", d.Subject)
	m.SetBody("text/plain", d.Text)
	m.AddAlternative("text/html", d.HTML)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts the digest to a chat through a bot.
type Telegram struct {
	bot    telegramSender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Deliver(ctx context.Context, d *Digest) error {
	for i, text := range d.Telegram {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("sending telegram message %d/%d: %w", i+1, len(d.Telegram), err)
		}
	}
	return nil
}
