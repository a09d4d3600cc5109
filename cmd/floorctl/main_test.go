package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor-backend/internal/reconcile"
)

func TestRenderTotals(t *testing.T) {
	var buf bytes.Buffer
	totals := reconcile.Totals{
		ExpectedCash: decimal.RequireFromString("230"),
		CardTotal:    decimal.RequireFromString("110.5"),
		OrderCount:   3,
	}

	err := renderTotals(&buf, "2026-10-19 (open)", totals, [][]string{{"Variance", "-5.00"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2026-10-19 (open)")
	assert.Contains(t, out, "230.00")
	assert.Contains(t, out, "110.50")
	assert.Contains(t, out, "-5.00")
}
