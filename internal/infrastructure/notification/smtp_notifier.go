package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/pkg/config"
	"github.com/windi9/dwc-pos/pkg/logger"
)

var _ auth.Notifier = (*SMTPNotifier)(nil)

const defaultSendTimeout = 30 * time.Second

// Sender lo implementa *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier envía los emails en segundo plano; un fallo solo queda en el log.
type SMTPNotifier struct {
	sender  Sender
	from    string
	appName string
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewSMTPNotifier construye el notificador sobre un dialer gomail.
func NewSMTPNotifier(cfg config.MailConfig, appName string, log *logger.Logger) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return NewSMTPNotifierWithSender(d, cfg.From, appName, log)
}

// NewSMTPNotifierWithSender permite inyectar el Sender (tests).
func NewSMTPNotifierWithSender(sender Sender, from, appName string, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		sender:  sender,
		from:    from,
		appName: appName,
		timeout: defaultSendTimeout,
		log:     log.Named("notifier"),
	}
}

func (n *SMTPNotifier) SendVerificationLink(ctx context.Context, email, link string) {
	subject := fmt.Sprintf("%s: activa tu cuenta", n.appName)
	body := fmt.Sprintf("Hola,\n\nPara activar tu cuenta abre este enlace:\n\n%s\n\nSi no creaste la cuenta, ignora este mensaje.\n", link)
	n.dispatch(ctx, email, subject, body)
}

func (n *SMTPNotifier) SendVerificationCode(ctx context.Context, email, code string) {
	subject := fmt.Sprintf("%s: código de acceso", n.appName)
	body := fmt.Sprintf("Tu código de acceso es: %s\n\nCaduca en unos minutos y solo puede usarse una vez.\n", code)
	n.dispatch(ctx, email, subject, body)
}

// Wait bloquea hasta que terminen los envíos en curso, incluidos los que ya superaron el timeout
// (apagado ordenado y tests).
func (n *SMTPNotifier) Wait() {
	n.wg.Wait()
}

// dispatch copia los strings: pueden apuntar al buffer de la petición HTTP, que se reutiliza.
func (n *SMTPNotifier) dispatch(ctx context.Context, to, subject, body string) {
	to, subject, body = strings.Clone(to), strings.Clone(subject), strings.Clone(body)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		errc := make(chan error, 1)
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			errc <- n.sender.DialAndSend(m)
		}()

		select {
		case err := <-errc:
			if err != nil {
				n.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("error enviando email")
				return
			}
			n.log.Debug().Str("to", to).Str("subject", subject).Msg("email enviado")
		case <-ctx.Done():
			n.log.Error().Err(ctx.Err()).Str("to", to).Msg("timeout enviando email")
		}
	}()
}
