package mail

import "github.com/rs/zerolog"

// ConsoleService writes mail to the log instead of sending it. Used in dev
// when no SendGrid key is configured, and in tests.
type ConsoleService struct {
	log zerolog.Logger
}

var _ Service = (*ConsoleService)(nil)

// NewConsoleService creates a log-backed mail service.
func NewConsoleService(log zerolog.Logger) *ConsoleService {
	return &ConsoleService{log: log.With().Str("component", "console_mail").Logger()}
}

func (s *ConsoleService) Send(msg Message) {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.HTMLBody).
		Msg("mail (console)")
}
