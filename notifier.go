package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// Email is the uniform message every transport accepts
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers lifecycle emails. Delivery is best-effort: callers
// log failures but never roll back the mutation that triggered the
// send.
type Notifier interface {
	Send(ctx context.Context, msg Email) error
}

// SMTPNotifier delivers through a single SMTP server
type SMTPNotifier struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
	logger  Logger
}

func NewSMTPNotifier(host string, port int, user, pass, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer:  gomail.NewDialer(host, port, user, pass),
		from:    from,
		timeout: 10 * time.Second,
		logger:  defLogger{},
	}
}

func (n *SMTPNotifier) WithTimeout(d time.Duration) *SMTPNotifier {
	if d > 0 {
		n.timeout = d
	}
	return n
}

func (n *SMTPNotifier) WithLogger(l Logger) *SMTPNotifier {
	if l != nil {
		n.logger = l
	}
	return n
}

// Send delivers the message, bounded by the notifier timeout so a stuck
// SMTP dial cannot hang the caller past the fallback point.
func (n *SMTPNotifier) Send(ctx context.Context, msg Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "smtp delivery failed")
		}
		return nil
	case <-time.After(n.timeout):
		return goerrors.New("smtp delivery timed out", goerrors.CategoryOperation)
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "smtp delivery cancelled")
	}
}

// LogNotifier prints the message instead of delivering it. Used as the
// development transport and as the terminal fallback so minted links
// are never silently lost.
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Email) error {
	n.logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	n.logger.Info("to: %s", msg.To)
	n.logger.Info("subject: %s", msg.Subject)
	n.logger.Info("%s", msg.HTML)
	return nil
}

// FallbackNotifier tries an ordered list of transports in sequence and
// stops at the first success. Only when every transport fails does it
// surface the distinguishable notification failure.
type FallbackNotifier struct {
	transports []Notifier
	logger     Logger
}

func NewFallbackNotifier(transports ...Notifier) *FallbackNotifier {
	return &FallbackNotifier{
		transports: transports,
		logger:     defLogger{},
	}
}

func (n *FallbackNotifier) WithLogger(l Logger) *FallbackNotifier {
	if l != nil {
		n.logger = l
	}
	return n
}

func (n *FallbackNotifier) Send(ctx context.Context, msg Email) error {
	if len(n.transports) == 0 {
		return ErrNotificationFailed
	}

	var lastErr error
	for i, transport := range n.transports {
		err := transport.Send(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		n.logger.Error("notifier transport %d failed, trying next: %v", i, err)
	}

	return goerrors.Wrap(lastErr, ErrNotificationFailed.Category, ErrNotificationFailed.Message).
		WithTextCode(ErrNotificationFailed.TextCode)
}

var (
	_ Notifier = (*SMTPNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*FallbackNotifier)(nil)
)

// VerificationEmail builds the signup verification message. The minted
// token appears only here, never in a response payload.
func VerificationEmail(frontendURL, to, token string) Email {
	link := fmt.Sprintf("%s/verify-email?token=%s", frontendURL, token)
	return Email{
		To:      to,
		Subject: "Verify your email",
		HTML: fmt.Sprintf(`<h1>Welcome!</h1>
<p>Please verify your email address by clicking the link below:</p>
<a href="%s">Verify Email</a>`, link),
	}
}

// PasswordResetEmail builds the reset message with the 1 hour notice.
func PasswordResetEmail(frontendURL, to, token string) Email {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token)
	return Email{
		To:      to,
		Subject: "Password Reset Request",
		HTML: fmt.Sprintf(`<p>You requested a password reset</p>
<p>Click this link to reset your password:</p>
<a href="%s">Reset Password</a>
<p>This link will expire in 1 hour.</p>`, link),
	}
}
