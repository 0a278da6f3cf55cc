package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<h2>Verify your email address</h2>
<p>Thanks for signing up. Click the link below to activate your account.</p>
<p><a href="{{.URL}}">Verify email</a></p>
<p>This link expires in 24 hours. If you did not create an account, ignore this message.</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<h2>Reset your password</h2>
<p>We received a request to reset your password.</p>
<p><a href="{{.URL}}">Reset password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, your password stays unchanged.</p>
`))

var upgradeTmpl = template.Must(template.New("upgrade").Parse(`
<h2>Welcome to {{.Tier}}</h2>
<p>Your subscription has been upgraded.</p>
<p>Your plan now includes {{.Generations}} AI generations per month.</p>
`))

var paymentFailedTmpl = template.Must(template.New("payment_failed").Parse(`
<h2>Payment failed</h2>
<p>We were unable to process your subscription payment.</p>
<p>Please update your payment method to keep using the service.</p>
<p><a href="{{.URL}}">Update payment method</a></p>
`))

// Mailer renders and sends the application messages. Delivery failures are
// logged and not surfaced to callers; mail is best effort everywhere it is
// used.
type Mailer struct {
	provider    Provider
	log         *zap.Logger
	frontendURL string
}

func New(provider Provider, log *zap.Logger, frontendURL string) *Mailer {
	return &Mailer{
		provider:    provider,
		log:         log.Named("mailer"),
		frontendURL: frontendURL,
	}
}

func (m *Mailer) SendVerification(ctx context.Context, to, token string) {
	url := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	m.send(ctx, to, "Verify your AdvisorHub email", verificationTmpl, map[string]string{"URL": url})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) {
	url := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	m.send(ctx, to, "Reset your AdvisorHub password", passwordResetTmpl, map[string]string{"URL": url})
}

func (m *Mailer) SendUpgradeConfirmation(ctx context.Context, to, tier, generations string) {
	m.send(ctx, to, "Subscription upgraded", upgradeTmpl, map[string]string{
		"Tier":        tier,
		"Generations": generations,
	})
}

func (m *Mailer) SendPaymentFailed(ctx context.Context, to string) {
	url := fmt.Sprintf("%s/dashboard/billing", m.frontendURL)
	m.send(ctx, to, "Payment failed - action required", paymentFailedTmpl, map[string]string{"URL": url})
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data any) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		m.log.Error("render mail template", zap.Error(err))
		return
	}
	if err := m.provider.Send(ctx, to, subject, body.String()); err != nil {
		m.log.Warn("send mail", zap.String("to", to), zap.Error(err))
	}
}
