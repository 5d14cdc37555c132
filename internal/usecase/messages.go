package usecase

import (
	"fmt"
	"strings"

	"github.com/LeomirDias/gpmd-sys/internal/config"
	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

// MessageComposer monta assuntos e legendas das entregas a partir da marca.
type MessageComposer struct {
	Brand config.Brand
}

func (m MessageComposer) EmailSubject(products []*entity.Product) string {
	if len(products) == 1 {
		return fmt.Sprintf("O seu %s está pronto!", products[0].Name)
	}
	return "Seus produtos estão prontos!"
}

func (m MessageComposer) ProductSummary(products []*entity.Product) string {
	if len(products) == 1 {
		return products[0].Name
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func (m MessageComposer) WhatsAppCaption(customerName string, product *entity.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s! 👋\n\n", customerName)
	fmt.Fprintf(&b, "Seu %s está pronto! 🎉\n\n", product.Name)
	if m.Brand.Name != "" {
		fmt.Fprintf(&b, "A %s agradece por escolher nossos produtos! 🚗\n\n", m.Brand.Name)
	}
	if m.Brand.Instagram != "" {
		fmt.Fprintf(&b, "• Siga nossas redes sociais: %s\n\n", m.Brand.Instagram)
	}
	if m.Brand.Website != "" {
		fmt.Fprintf(&b, "• Conheça nosso guia completo: %s\n\n", m.Brand.Website)
	}
	b.WriteString("Até mais! 👋\n")
	if m.Brand.Name != "" {
		fmt.Fprintf(&b, "\nEquipe %s 💛\n", m.Brand.Name)
	}
	if m.Brand.SupportWhatsApp != "" {
		fmt.Fprintf(&b, "\n📱 Fale conosco via WhatsApp: %s\n", m.Brand.SupportWhatsApp)
	}
	if m.Brand.SupportEmail != "" {
		fmt.Fprintf(&b, "\n📧 Fale conosco via Email: %s\n", m.Brand.SupportEmail)
	}
	return b.String()
}

func emailEventSubject(p *entity.Product) string {
	return fmt.Sprintf("Produto %s entregue por email.", p.Name)
}

func whatsAppEventSubject(p *entity.Product) string {
	return fmt.Sprintf("Produto %s entregue via WhatsApp", p.Name)
}
