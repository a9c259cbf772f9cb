package notification

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/windi9/dwc-pos/pkg/logger"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m...)
	return f.err
}

func rendered(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPNotifier_EnviaCodigo(t *testing.T) {
	s := &fakeSender{}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())

	n.SendVerificationCode(context.Background(), "ana@example.com", "123456")
	n.Wait()

	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, s.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@dwc.test"}, s.sent[0].GetHeader("From"))
	assert.Contains(t, rendered(t, s.sent[0]), "123456")
}

func TestSMTPNotifier_EnviaEnlace(t *testing.T) {
	s := &fakeSender{}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())

	n.SendVerificationLink(context.Background(), "ana@example.com", "http://localhost/api/v1/auth/verify-email?token=abc")
	n.Wait()

	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"DWC POS: activa tu cuenta"}, s.sent[0].GetHeader("Subject"))
	assert.Contains(t, rendered(t, s.sent[0]), "/api/v1/auth/verify-email?token")
}

// ────────────────────────────────────────────────────────────────

func TestSMTPNotifier_ContextoCanceladoNoDetieneEnvio(t *testing.T) {
	s := &fakeSender{delay: 20 * time.Millisecond}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	n.SendVerificationCode(ctx, "ana@example.com", "654321")
	cancel()
	n.Wait()

	assert.Len(t, s.sent, 1)
}

func TestSMTPNotifier_ErrorNoSePropaga(t *testing.T) {
	s := &fakeSender{err: errors.New("smtp caído")}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())

	assert.NotPanics(t, func() {
		n.SendVerificationCode(context.Background(), "ana@example.com", "111111")
		n.Wait()
	})
	assert.Len(t, s.sent, 1)
}

func TestSMTPNotifier_TimeoutYWaitEsperaElEnvioPendiente(t *testing.T) {
	s := &fakeSender{delay: 100 * time.Millisecond}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())
	n.timeout = 10 * time.Millisecond

	start := time.Now()
	n.SendVerificationCode(context.Background(), "ana@example.com", "222222")
	n.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond, "Wait no vuelve con un envío en curso")
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.sent, 1)
}

func TestSMTPNotifier_CopiaLosDatosDelLlamador(t *testing.T) {
	s := &fakeSender{delay: 20 * time.Millisecond}
	n := NewSMTPNotifierWithSender(s, "no-reply@dwc.test", "DWC POS", logger.Nop())

	// Mismo buffer que reutiliza fasthttp entre peticiones.
	buf := []byte("ana@example.com")
	code := []byte("333333")
	n.SendVerificationCode(context.Background(), unsafe.String(&buf[0], len(buf)), unsafe.String(&code[0], len(code)))
	copy(buf, "xxx@xxxxxxx.xxx")
	copy(code, "999999")
	n.Wait()

	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, s.sent[0].GetHeader("To"))
	assert.Contains(t, rendered(t, s.sent[0]), "333333")
}
