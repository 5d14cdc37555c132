package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FailurePolicy decide como as falhas da entrega chegam a quem chamou.
type FailurePolicy interface {
	// DownloadFailed recebe o erro que abortou a entrega; o retorno vai para o chamador.
	DownloadFailed(ctx context.Context, req DeliveryRequest, err error) error
	DeliveryFailed(ctx context.Context, req DeliveryRequest, failures []DeliveryError)
}

// ReportPolicy é usada no fluxo síncrono: o download abortado volta como erro
// e as falhas de envio seguem no DeliveryResult.
type ReportPolicy struct {
	Log *zap.Logger
}

func (p ReportPolicy) DownloadFailed(_ context.Context, req DeliveryRequest, err error) error {
	p.logger().Error("entrega abortada no download",
		zap.String("order_id", req.OrderID), zap.Error(err))
	return err
}

func (p ReportPolicy) DeliveryFailed(_ context.Context, req DeliveryRequest, failures []DeliveryError) {
	p.logger().Warn("entrega com falhas parciais",
		zap.String("order_id", req.OrderID), zap.Any("delivery_errors", failures))
}

func (p ReportPolicy) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// LogPolicy é usada em segundo plano: ninguém espera a resposta, então
// tudo vai para o log e para o Reporter.
type LogPolicy struct {
	Log      *zap.Logger
	Reporter ErrorReporter
}

func (p LogPolicy) DownloadFailed(ctx context.Context, req DeliveryRequest, err error) error {
	fields := []zap.Field{zap.String("order_id", req.OrderID), zap.Error(err)}
	var de *DownloadError
	if errors.As(err, &de) {
		fields = append(fields, zap.String("product_id", de.ProductID))
	}
	p.logger().Error("entrega em segundo plano abortada no download", fields...)
	p.report(ctx, err, map[string]string{"order_id": req.OrderID, "stage": "download"})
	return nil
}

func (p LogPolicy) DeliveryFailed(ctx context.Context, req DeliveryRequest, failures []DeliveryError) {
	for _, f := range failures {
		p.logger().Error("falha no envio em segundo plano",
			zap.String("order_id", req.OrderID),
			zap.String("channel", string(f.Channel)),
			zap.String("error", f.Message))
		p.report(ctx, errors.New(f.Message), map[string]string{
			"order_id": req.OrderID,
			"stage":    "send",
			"channel":  string(f.Channel),
		})
	}
}

func (p LogPolicy) report(ctx context.Context, err error, tags map[string]string) {
	if p.Reporter != nil {
		p.Reporter.Report(ctx, err, tags)
	}
}

func (p LogPolicy) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
