package services

import (
	"context"
	"log/slog"
	"time"

	"water-service/internal/event"
	"water-service/internal/mail"
	"water-service/internal/metrics"
	"water-service/internal/models"
	"water-service/internal/worker"
	"water-service/shared/utils"
)

type JobSubmitter interface {
	SubmitJob(job worker.Job) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event event.RequestEvent) error
}

type Mailer interface {
	SendConfirmation(to string, data mail.ConfirmationData) error
	SendStatusChanged(to, applicantName, requestID, status string) error
}

// Notifier fans post-commit side effects out to the working pool. Publisher
// and mailer are optional; a nil one is skipped.
type Notifier struct {
	pool      JobSubmitter
	publisher EventPublisher
	mailer    Mailer
	timeout   time.Duration
}

func NewNotifier(pool JobSubmitter, publisher EventPublisher, mailer Mailer) *Notifier {
	return &Notifier{
		pool:      pool,
		publisher: publisher,
		mailer:    mailer,
		timeout:   30 * time.Second,
	}
}

func (n *Notifier) dispatch(name string, job worker.Job) {
	if n == nil || n.pool == nil {
		metrics.RecordBackgroundJob(name, metrics.ResultSkipped)
		return
	}

	timeout := n.timeout
	err := n.pool.SubmitJob(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := job(ctx); err != nil {
			metrics.RecordBackgroundJob(name, metrics.ResultFailed)
			return err
		}
		metrics.RecordBackgroundJob(name, metrics.ResultSuccess)
		return nil
	})
	if err != nil {
		slog.Warn("background job dropped", "job", name, "error", err)
		metrics.RecordBackgroundJob(name, metrics.ResultSkipped)
	}
}

func (n *Notifier) RequestSubmitted(record *models.WaterServiceRequest, result *models.SubmissionResult) {
	if n == nil {
		return
	}

	if n.publisher != nil {
		evt := event.RequestEvent{
			Type:            event.EventRequestSubmitted,
			RequestID:       result.ID,
			Status:          record.Status.String(),
			ApplicantEmail:  record.ApplicantEmail,
			PropertyUseType: string(record.PropertyUseType),
			DepositRequired: result.DepositRequired,
			OccurredAt:      record.CreatedAt,
		}
		n.dispatch("publish_request_submitted", func(ctx context.Context) error {
			return n.publisher.Publish(ctx, evt)
		})
	}

	if n.mailer != nil {
		documents := make([]string, 0, len(result.DocumentsStored))
		for _, kind := range result.DocumentsStored {
			documents = append(documents, string(kind))
		}
		data := mail.ConfirmationData{
			ApplicantName:   record.ApplicantName,
			RequestID:       result.ID,
			ServiceAddress:  record.ServiceAddress,
			MonthlyEstimate: result.MonthlyEstimate.EstimatedMonthlyTotal.StringFixed(2),
			DepositRequired: result.DepositRequired,
			Notes:           result.MonthlyEstimate.Notes,
			DocumentsStored: documents,
		}
		to := record.ApplicantEmail
		n.dispatch("confirmation_email", func(ctx context.Context) error {
			return n.mailer.SendConfirmation(to, data)
		})
	}
}

func (n *Notifier) StatusChanged(record *models.WaterServiceRequest, changedBy string) {
	if n == nil {
		return
	}

	id := record.ID.String()
	status := record.Status.String()

	if n.publisher != nil {
		evt := event.RequestEvent{
			Type:           event.EventStatusChanged,
			RequestID:      id,
			Status:         status,
			ApplicantEmail: record.ApplicantEmail,
			ChangedBy:      changedBy,
			OccurredAt:     record.UpdatedAt,
		}
		n.dispatch("publish_status_changed", func(ctx context.Context) error {
			return n.publisher.Publish(ctx, evt)
		})
	}

	if n.mailer != nil && utils.ValidateEmail(record.ApplicantEmail) {
		to, name := record.ApplicantEmail, record.ApplicantName
		n.dispatch("status_email", func(ctx context.Context) error {
			return n.mailer.SendStatusChanged(to, name, id, status)
		})
	}
}
