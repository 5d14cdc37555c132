package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

var productDeliveryTmpl = template.Must(template.ParseFS(templatesFS, "templates/product_delivery.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	cfg    SenderConfig
	dialer dialer
	log    *zap.Logger
}

func NewEmailSender(cfg SenderConfig, log *zap.Logger) *EmailSender {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LogoPath != "" {
		if _, err := os.Stat(cfg.LogoPath); err != nil {
			log.Warn("logo do email não encontrada, enviando sem logo",
				zap.String("path", cfg.LogoPath), zap.Error(err))
			cfg.LogoPath = ""
		}
	}
	return &EmailSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		log:    log,
	}
}

// SendProductDelivery manda um único email com todos os arquivos anexados.
func (s *EmailSender) SendProductDelivery(ctx context.Context, email usecase.ProductEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(email)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	s.log.Info("email de entrega enviado",
		zap.String("to", email.To),
		zap.Int("attachments", len(email.Attachments)))
	return nil
}

func (s *EmailSender) buildMessage(email usecase.ProductEmail) (*gomail.Message, error) {
	data := ProductDeliveryData{
		CustomerName:   email.CustomerName,
		ProductSummary: email.ProductSummary,
		HasLogo:        s.cfg.LogoPath != "",
		Brand:          s.cfg.Brand,
	}

	var body bytes.Buffer
	if err := productDeliveryTmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", body.String())

	if s.cfg.LogoPath != "" {
		m.Embed(s.cfg.LogoPath, gomail.SetHeader(map[string][]string{
			"Content-ID": {"<" + LogoContentID + ">"},
		}))
	}

	for _, a := range email.Attachments {
		content := a.Content
		m.Attach(a.FileName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}
	return m, nil
}
