package usecase

import (
	"context"
)

type Attachment struct {
	FileName string
	Content  []byte
}

// ProductEmail carrega o conteúdo da mensagem; o layout fica com o remetente.
type ProductEmail struct {
	To             string
	CustomerName   string
	Subject        string
	ProductSummary string
	Attachments    []Attachment
}

type WhatsAppDocument struct {
	Phone    string
	FileName string
	Caption  string
	Content  []byte
}

type EmailService interface {
	SendProductDelivery(ctx context.Context, email ProductEmail) error
}

type WhatsAppService interface {
	SendDocument(ctx context.Context, doc WhatsAppDocument) error
}

type BlobFetcher interface {
	FetchWithRetry(ctx context.Context, locator string, maxAttempts int) ([]byte, error)
}

// ContactLocker serializa upserts do mesmo contato entre instâncias.
type ContactLocker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

type DeliveryDispatcher interface {
	Dispatch(ctx context.Context, job DeliveryJob) error
}

type ErrorReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

type DeliveryMetrics interface {
	TaskFinished(channel Channel, ok bool)
	DeliveryFinished(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) TaskFinished(Channel, bool) {}
func (nopMetrics) DeliveryFinished(string)    {}
