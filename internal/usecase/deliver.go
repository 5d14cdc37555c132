package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

const (
	defaultFetchAttempts       = 3
	defaultDownloadConcurrency = 4
)

type DeliveryRequest struct {
	OrderID      string
	Category     entity.OrderType
	ContactType  entity.ContactType
	CustomerName string
	Email        *string
	Phone        *string
	Products     []*entity.Product
}

type DeliveryResult struct {
	Sent      entity.ContactType
	Errors    []DeliveryError
	Tasks     int
	Delivered bool
	Aborted   bool
}

type downloadedFile struct {
	product *entity.Product
	name    string
	content []byte
}

type deliveryTask struct {
	channel Channel
	run     func(ctx context.Context) error
}

// DeliveryOrchestrator baixa os arquivos, dispara os canais em paralelo e
// registra os eventos. Serve tanto o fluxo síncrono quanto o de segundo plano.
type DeliveryOrchestrator struct {
	Fetcher             BlobFetcher
	Email               EmailService
	WhatsApp            WhatsAppService
	Events              entity.EventRepositoryInterface
	Orders              entity.OrderRepositoryInterface
	Messages            MessageComposer
	Metrics             DeliveryMetrics
	FetchAttempts       int
	DownloadConcurrency int
	Now                 func() time.Time
	log                 *zap.Logger
}

func NewDeliveryOrchestrator(
	fetcher BlobFetcher,
	email EmailService,
	whatsapp WhatsAppService,
	events entity.EventRepositoryInterface,
	orders entity.OrderRepositoryInterface,
	messages MessageComposer,
	log *zap.Logger,
) *DeliveryOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeliveryOrchestrator{
		Fetcher:             fetcher,
		Email:               email,
		WhatsApp:            whatsapp,
		Events:              events,
		Orders:              orders,
		Messages:            messages,
		Metrics:             nopMetrics{},
		FetchAttempts:       defaultFetchAttempts,
		DownloadConcurrency: defaultDownloadConcurrency,
		Now:                 time.Now,
		log:                 log,
	}
}

func (o *DeliveryOrchestrator) Deliver(ctx context.Context, req DeliveryRequest, policy FailurePolicy) (*DeliveryResult, error) {
	result := &DeliveryResult{}
	products := uniqueProducts(req.Products)
	if len(products) == 0 {
		return result, nil
	}

	files, err := o.download(ctx, products)
	if err != nil {
		result.Aborted = true
		o.metrics().DeliveryFinished("aborted")
		return result, policy.DownloadFailed(ctx, req, err)
	}

	tasks := o.buildTasks(req, files)
	result.Tasks = len(tasks)
	if len(tasks) == 0 {
		o.log.Warn("nenhum canal de entrega aplicável",
			zap.String("order_id", req.OrderID), zap.String("contact_type", string(req.ContactType)))
		o.metrics().DeliveryFinished("no_tasks")
		return result, nil
	}

	outcomes := o.runAll(ctx, tasks)
	for i, taskErr := range outcomes {
		o.metrics().TaskFinished(tasks[i].channel, taskErr == nil)
		if taskErr != nil {
			result.Errors = append(result.Errors, DeliveryError{Channel: tasks[i].channel, Message: taskErr.Error()})
		}
	}
	if len(result.Errors) < len(tasks) {
		result.Sent = req.ContactType
	}

	if len(result.Errors) > 0 {
		o.metrics().DeliveryFinished("partial_failure")
		policy.DeliveryFailed(ctx, req, result.Errors)
		return result, nil
	}

	if req.OrderID != "" {
		if err := o.Orders.MarkDelivered(ctx, req.OrderID); err != nil {
			// Arquivos já saíram; o pedido fica como created e aparece no monitor.
			o.log.Error("erro ao marcar pedido como entregue",
				zap.String("order_id", req.OrderID), zap.Error(err))
			o.metrics().DeliveryFinished("status_update_failed")
			return result, nil
		}
	}
	result.Delivered = true
	o.metrics().DeliveryFinished("delivered")
	return result, nil
}

// download é tudo ou nada: o primeiro erro cancela os demais downloads.
func (o *DeliveryOrchestrator) download(ctx context.Context, products []*entity.Product) ([]downloadedFile, error) {
	files := make([]downloadedFile, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency())
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			content, err := o.Fetcher.FetchWithRetry(gctx, p.ProviderPath, o.attempts())
			if err != nil {
				return &DownloadError{ProductID: p.ID, Err: err}
			}
			files[i] = downloadedFile{product: p, name: p.FileName(), content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (o *DeliveryOrchestrator) buildTasks(req DeliveryRequest, files []downloadedFile) []deliveryTask {
	var tasks []deliveryTask

	email := entity.NullIfEmpty(req.Email)
	if req.ContactType.IncludesEmail() && email != nil {
		tasks = append(tasks, deliveryTask{
			channel: ChannelEmail,
			run:     func(ctx context.Context) error { return o.sendEmail(ctx, req, *email, files) },
		})
	}

	phone := entity.NullIfEmpty(req.Phone)
	if req.ContactType.IncludesPhone() && phone != nil {
		for _, f := range files {
			f := f
			tasks = append(tasks, deliveryTask{
				channel: ChannelWhatsApp,
				run:     func(ctx context.Context) error { return o.sendWhatsApp(ctx, req, *phone, f) },
			})
		}
	}
	return tasks
}

// runAll espera todas as tarefas; uma falha não interrompe as outras.
func (o *DeliveryOrchestrator) runAll(ctx context.Context, tasks []deliveryTask) []error {
	outcomes := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = fmt.Errorf("panic no envio por %s: %v", task.channel, r)
				}
			}()
			outcomes[i] = task.run(ctx)
		}()
	}
	wg.Wait()
	return outcomes
}

func (o *DeliveryOrchestrator) sendEmail(ctx context.Context, req DeliveryRequest, to string, files []downloadedFile) error {
	if o.Email == nil {
		return ErrChannelUnavailable
	}

	products := make([]*entity.Product, 0, len(files))
	attachments := make([]Attachment, 0, len(files))
	for _, f := range files {
		products = append(products, f.product)
		attachments = append(attachments, Attachment{FileName: f.name, Content: f.content})
	}

	err := o.Email.SendProductDelivery(ctx, ProductEmail{
		To:             to,
		CustomerName:   req.CustomerName,
		Subject:        o.Messages.EmailSubject(products),
		ProductSummary: o.Messages.ProductSummary(products),
		Attachments:    attachments,
	})
	if err != nil {
		return err
	}

	sentAt := o.now()
	for _, p := range products {
		event := entity.NewEvent(entity.EventEmailDelivery, req.Category, to, emailEventSubject(p), p.ID, sentAt)
		if err := o.Events.Create(ctx, event); err != nil {
			return fmt.Errorf("email enviado, mas falhou ao registrar evento: %w", err)
		}
	}
	return nil
}

func (o *DeliveryOrchestrator) sendWhatsApp(ctx context.Context, req DeliveryRequest, phone string, f downloadedFile) error {
	if o.WhatsApp == nil {
		return ErrChannelUnavailable
	}

	err := o.WhatsApp.SendDocument(ctx, WhatsAppDocument{
		Phone:    phone,
		FileName: f.name,
		Caption:  o.Messages.WhatsAppCaption(req.CustomerName, f.product),
		Content:  f.content,
	})
	if err != nil {
		return err
	}

	event := entity.NewEvent(entity.EventWhatsAppDelivery, req.Category, phone, whatsAppEventSubject(f.product), f.product.ID, o.now())
	if err := o.Events.Create(ctx, event); err != nil {
		return fmt.Errorf("whatsapp enviado, mas falhou ao registrar evento: %w", err)
	}
	return nil
}

func (o *DeliveryOrchestrator) attempts() int {
	if o.FetchAttempts <= 0 {
		return defaultFetchAttempts
	}
	return o.FetchAttempts
}

func (o *DeliveryOrchestrator) concurrency() int {
	if o.DownloadConcurrency <= 0 {
		return defaultDownloadConcurrency
	}
	return o.DownloadConcurrency
}

func (o *DeliveryOrchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *DeliveryOrchestrator) metrics() DeliveryMetrics {
	if o.Metrics == nil {
		return nopMetrics{}
	}
	return o.Metrics
}
