// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/propverify/pkg/types"
)

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	l, err := OpenLedger(path)
	require.NoError(t, err)

	at := time.Date(2026, time.March, 14, 9, 30, 0, 123, time.FixedZone("IST", 5*3600+1800))
	want := types.UploadReceipt{
		OrderID:    "case-1",
		FileName:   "case-1-report.pdf",
		Size:       2048,
		SHA256:     "abc123",
		URL:        "https://fake-storage.com/reports/case-1-report.pdf",
		ReceivedAt: at,
	}
	require.NoError(t, l.Record(ctx, want))
	require.NoError(t, l.Record(ctx, types.UploadReceipt{OrderID: "case-2", ReceivedAt: at}))
	require.NoError(t, l.Close())

	// Reopening keeps existing rows.
	l, err = OpenLedger(path)
	require.NoError(t, err)
	defer l.Close()

	got, err := l.ForOrder(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, at.Equal(got[0].ReceivedAt))
	got[0].ReceivedAt = want.ReceivedAt
	assert.Equal(t, want, got[0])

	none, err := l.ForOrder(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
