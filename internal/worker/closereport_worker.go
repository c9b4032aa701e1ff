package worker

// Builds the close-out reconciliation report for a just-closed till
// session and mails it to the back office. SMTP calls go through the
// circuit breaker; jobs that keep failing land in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tillengine/internal/dto"
	"tillengine/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReportBuilder produces the reconciliation report for a session. The
// reconciliation service satisfies it.
type ReportBuilder interface {
	Reconcile(ctx context.Context, sessionID uuid.UUID) (*dto.ReconciliationReport, error)
}

// ReportSender delivers a rendered report. *infra.Mailer satisfies it.
type ReportSender interface {
	SendReport(to, subject, body string) error
}

// CloseReportWorker processes close-report jobs from QueueCloseReport.
type CloseReportWorker struct {
	reports   ReportBuilder
	sender    ReportSender
	cb        *infra.CircuitBreaker
	rdb       *redis.Client
	recipient string
}

func NewCloseReportWorker(reports ReportBuilder, sender ReportSender, cb *infra.CircuitBreaker, rdb *redis.Client, recipient string) *CloseReportWorker {
	return &CloseReportWorker{reports: reports, sender: sender, cb: cb, rdb: rdb, recipient: recipient}
}

// Process builds and mails one close-out report. Delivery retries with
// exponential backoff; after the last attempt the job moves to the DLQ.
func (w *CloseReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CloseReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("close_report: invalid payload")
		return
	}
	if w.recipient == "" {
		log.Debug().Str("session_id", payload.SessionID).Msg("close_report: no recipient configured, skipping")
		return
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		log.Error().Str("session_id", payload.SessionID).Msg("close_report: invalid session id")
		return
	}

	report, err := w.reports.Reconcile(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("close_report: reconciliation failed")
		SendToDLQ(ctx, w.rdb, QueueCloseReport, "close_report", raw, err.Error(), 1)
		return
	}

	subject := fmt.Sprintf("Till close-out — register %d — session %s", report.RegisterID, shortID(report.TillSessionID))
	body := renderReport(report)

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		return w.cb.Execute(func() error {
			return w.sender.SendReport(w.recipient, subject, body)
		})
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("session_id", payload.SessionID).Msg("close_report: delivery failed")
		SendToDLQ(ctx, w.rdb, QueueCloseReport, "close_report", raw, sendErr.Error(), 3)
		return
	}
	log.Info().Str("session_id", payload.SessionID).Str("to", w.recipient).Msg("close_report: sent")
}

// renderReport formats a reconciliation report as plain text.
func renderReport(r *dto.ReconciliationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Till session %s (register %d)\n", r.TillSessionID, r.RegisterID)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Opened: %s\n", r.OpenedAt)
	if r.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed: %s\n", *r.ClosedAt)
	}
	fmt.Fprintf(&b, "\nOpening balance: %s\n\n", r.OpeningBalance)
	for _, a := range r.Accounts {
		fmt.Fprintf(&b, "%-24s ingress %12s  egress %12s\n", a.Account, a.Ingress, a.Egress)
	}
	fmt.Fprintf(&b, "\nTotal ingress:        %s\n", r.TotalIngress)
	fmt.Fprintf(&b, "Total egress:         %s\n", r.TotalEgress)
	fmt.Fprintf(&b, "Current-account debt: %s\n", r.CurrentAccountTotal)
	fmt.Fprintf(&b, "Final cash balance:   %s\n", r.FinalCashBalance)
	fmt.Fprintf(&b, "Orders:               %d\n", r.OrderCount)
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// withRetry runs fn up to maxAttempts times with exponential backoff
// (1s, 2s, 4s, ...), honoring context cancellation between attempts.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		backoff := time.Duration(1<<(attempt-1)) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
