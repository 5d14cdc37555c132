package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/config"
	"github.com/LeomirDias/gpmd-sys/internal/infra/blob"
	"github.com/LeomirDias/gpmd-sys/internal/infra/database"
	"github.com/LeomirDias/gpmd-sys/internal/infra/http/handlers"
	"github.com/LeomirDias/gpmd-sys/internal/infra/http/middleware"
	"github.com/LeomirDias/gpmd-sys/internal/infra/integration/zapi"
	"github.com/LeomirDias/gpmd-sys/internal/infra/lock"
	"github.com/LeomirDias/gpmd-sys/internal/infra/mail"
	"github.com/LeomirDias/gpmd-sys/internal/infra/monitoring"
	"github.com/LeomirDias/gpmd-sys/internal/infra/queue"
	"github.com/LeomirDias/gpmd-sys/internal/infra/worker"
	"github.com/LeomirDias/gpmd-sys/internal/logger"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("erro ao iniciar logger: %v", err)
	}
	defer logg.Sync()

	flushSentry, err := monitoring.Init(cfg.SentryDSN, cfg.Env)
	if err != nil {
		logg.Fatal("erro ao iniciar sentry", zap.Error(err))
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("erro ao conectar no banco", zap.Error(err))
	}
	defer db.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	productRepo := database.NewProductRepository(db)
	orderRepo := database.NewOrderRepository(db)
	eventRepo := database.NewEventRepository(db)

	// 2. Storage, canais de entrega e lock
	fetcherOpts := []blob.Option{blob.WithLogger(logg)}
	if cfg.MinIOEnabled() {
		store, err := blob.NewMinIOStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			logg.Fatal("erro ao configurar MinIO", zap.Error(err))
		}
		fetcherOpts = append(fetcherOpts, blob.WithObjectStore(store))
	}
	fetcher := blob.NewFetcher(fetcherOpts...)

	var emailSvc usecase.EmailService
	if cfg.MailEnabled() {
		emailSvc = mail.NewEmailSender(mail.SenderConfig{
			Host:        cfg.MailHost,
			Port:        cfg.MailPort,
			User:        cfg.MailUser,
			Password:    cfg.MailPassword,
			FromName:    cfg.MailFromName,
			FromAddress: cfg.MailFromAddress,
			LogoPath:    cfg.EmailLogoPath,
			Brand:       cfg.Brand,
		}, logg)
	} else {
		logg.Warn("SMTP não configurado: entregas por email vão falhar")
	}

	var whatsappSvc usecase.WhatsAppService
	if cfg.WhatsAppEnabled() {
		client := zapi.NewClient(cfg.ZAPIBaseURL, cfg.ZAPIInstanceID, cfg.ZAPIToken, cfg.ZAPIClientToken, logg)
		whatsappSvc = mail.NewWhatsAppSender(client)
	} else {
		logg.Warn("Z-API não configurada: entregas por WhatsApp vão falhar")
	}

	var (
		locker      usecase.ContactLocker
		redisClient redis.UniversalClient
	)
	if cfg.RedisURL != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logg.Fatal("erro ao conectar no redis", zap.Error(err))
		}
		defer rdb.Close()
		redisClient = rdb
		locker = lock.NewRedisLocker(rdb, logg)
	}

	// 3. UseCases
	leadService := usecase.NewLeadService(leadRepo, locker, logg)
	resolver := usecase.NewProductResolver(productRepo)

	orchestrator := usecase.NewDeliveryOrchestrator(
		fetcher, emailSvc, whatsappSvc, eventRepo, orderRepo,
		usecase.MessageComposer{Brand: cfg.Brand}, logg,
	)
	orchestrator.Metrics = middleware.DeliveryMetrics{}
	orchestrator.FetchAttempts = cfg.FetchMaxAttempts
	orchestrator.DownloadConcurrency = cfg.DownloadConcurrency

	background := usecase.NewBackgroundDelivery(
		resolver, orchestrator,
		usecase.LogPolicy{Log: logg, Reporter: monitoring.NewSentryReporter(nil)},
		cfg.DeliveryDeadline, logg,
	)

	// 4. Entrega em segundo plano: fila quando houver RabbitMQ, goroutine caso contrário
	var (
		dispatch   usecase.DeliveryDispatcher
		inProcess  *usecase.InProcessDispatcher
		rabbitMQ   *queue.RabbitMQ
		rabbitConn interface{ IsClosed() bool }
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logg.Fatal("erro ao conectar no RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()
		rabbitConn = rabbitMQ
		dispatch = queue.NewProducer(rabbitMQ.Ch)

		deliveryWorker := queue.NewWorker(rabbitMQ.Ch, background, logg)
		go func() {
			if err := deliveryWorker.Start(ctx, queue.QueueName); err != nil {
				logg.Error("worker de entregas parou", zap.Error(err))
			}
		}()
	} else {
		inProcess = usecase.NewInProcessDispatcher(background)
		dispatch = inProcess
	}

	captureUC := usecase.NewCaptureLeadUseCase(leadService, resolver, orderRepo, orchestrator, logg)
	updateUC := usecase.NewUpdateLeadUseCase(leadRepo)
	purchaseUC := usecase.NewProcessPurchaseUseCase(leadService, resolver, orderRepo, dispatch, logg)

	staleWorker := worker.NewStaleOrderWorker(orderRepo, cfg.StaleOrderAfter, middleware.StaleOrders, logg)
	go staleWorker.Start(ctx)

	// 5. Handlers e rotas
	router := newRouter(cfg, logg, routes{
		lead:    handlers.NewLeadHandler(captureUC, updateUC, logg),
		webhook: handlers.NewWebhookHandler(purchaseUC, cfg.CaktoWebhookSecret, logg),
		health: handlers.NewHealthHandler(db, rabbitConn, redisClient, map[string]bool{
			"email":    emailSvc != nil,
			"whatsapp": whatsappSvc != nil,
		}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("servidor rodando", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("erro no servidor HTTP", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("desligando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DeliveryDeadline+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("erro ao desligar servidor HTTP", zap.Error(err))
	}
	if inProcess != nil {
		if err := inProcess.Wait(shutdownCtx); err != nil {
			logg.Warn("entregas em andamento interrompidas no desligamento", zap.Error(err))
		}
	}
}
