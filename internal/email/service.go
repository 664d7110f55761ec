package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/listora/listora/internal/config"
)

// Service gère l'envoi d'emails
type Service struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewService crée un nouveau service d'email
func NewService(cfg config.SMTPConfig, logger zerolog.Logger) *Service {
	return &Service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendVerificationEmail envoie l'email de vérification de compte
func (s *Service) SendVerificationEmail(to, name, verificationLink string) error {
	subject := "Verify Your Email"
	body := fmt.Sprintf(`
        <html>
        <body>
            <h1>Welcome, %s!</h1>
            <p>Click the link below to verify your account:</p>
            <p><a href="%s">Verify your account</a></p>
            <p>If you didn't create this account, you can ignore this email.</p>
        </body>
        </html>
    `, name, verificationLink)

	return s.send(to, subject, body)
}

// SendPasswordResetEmail envoie l'email de réinitialisation de mot de passe
func (s *Service) SendPasswordResetEmail(to, resetLink string) error {
	subject := "Reset Your Password"
	body := fmt.Sprintf(`
        <html>
        <body>
            <h1>Password reset</h1>
            <p>Click the link below to reset your password:</p>
            <p><a href="%s">Reset Password</a></p>
            <p>If you didn't request a password reset, you can ignore this email.</p>
        </body>
        </html>
    `, resetLink)

	return s.send(to, subject, body)
}

// SendAsync envoie un email en tâche de fond; l'échec est seulement journalisé,
// jamais remonté à la requête
func (s *Service) SendAsync(send func() error) {
	go func() {
		if err := send(); err != nil {
			s.logger.Error().Err(err).Msg("échec de l'envoi d'email")
		}
	}()
}

// send envoie un email HTML
func (s *Service) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return s.dialer.DialAndSend(msg)
}
