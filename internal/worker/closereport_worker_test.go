package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tillengine/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	closedAt := "2026-08-30T21:15:00Z"
	report := &dto.ReconciliationReport{
		TillSessionID:  "0b6a9f4e-1111-2222-3333-444455556666",
		RegisterID:     2,
		Status:         "closed",
		OpeningBalance: decimal.RequireFromString("1000.00"),
		Accounts: []dto.AccountReportRow{
			{Account: "Cash", Kind: "cash", Ingress: decimal.RequireFromString("500.00"), Egress: decimal.Zero},
		},
		TotalIngress:        decimal.RequireFromString("500.00"),
		TotalEgress:         decimal.Zero,
		CurrentAccountTotal: decimal.Zero,
		FinalCashBalance:    decimal.RequireFromString("1500.00"),
		OrderCount:          3,
		OpenedAt:            "2026-08-30T09:00:00Z",
		ClosedAt:            &closedAt,
	}

	body := renderReport(report)
	assert.Contains(t, body, "register 2")
	assert.Contains(t, body, "Status: closed")
	assert.Contains(t, body, "Closed: 2026-08-30T21:15:00Z")
	assert.Contains(t, body, "Cash")
	assert.Contains(t, body, "Final cash balance:   1500")
	assert.Contains(t, body, "Orders:               3")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0b6a9f4e", shortID("0b6a9f4e-1111-2222-3333-444455556666"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestWithRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("smtp down")
	calls := 0
	err := withRetry(context.Background(), 2, func(int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := withRetry(ctx, 5, func(int) error {
		return errors.New("never succeeds")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
