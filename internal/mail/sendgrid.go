package mail

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridService delivers mail through the SendGrid v3 API.
type SendGridService struct {
	key  string
	from *sgmail.Email
	log  zerolog.Logger
}

var _ Service = (*SendGridService)(nil)

// NewSendGridService creates a SendGrid-backed mail service.
func NewSendGridService(key, appName, fromEmail string, log zerolog.Logger) *SendGridService {
	return &SendGridService{
		key:  key,
		from: sgmail.NewEmail(appName, fromEmail),
		log:  log.With().Str("component", "sendgrid_mail").Logger(),
	}
}

// Send delivers the message on its own goroutine. Failures are logged and
// never surfaced to the caller.
func (s *SendGridService) Send(msg Message) {
	go func() {
		m := sgmail.NewV3Mail()
		m.SetFrom(s.from)

		p := sgmail.NewPersonalization()
		p.Subject = msg.Subject
		p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))
		m.AddPersonalizations(p)
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))

		req := sendgrid.GetRequest(s.key, sendGridEndpoint, sendGridHost)
		req.Method = http.MethodPost
		req.Body = sgmail.GetRequestBody(m)

		res, err := sendgrid.API(req)
		if err != nil {
			s.log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("mail send failed")
			return
		}
		if res.StatusCode >= http.StatusBadRequest {
			s.log.Error().Int("status", res.StatusCode).Str("to", msg.To).Str("subject", msg.Subject).Msg("mail rejected")
		}
	}()
}
