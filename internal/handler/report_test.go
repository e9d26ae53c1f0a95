package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rms-backend/internal/domain"
)

func TestExportJobOrdersCSV(t *testing.T) {
	completed := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)
	orders := []domain.JobOrder{
		{
			OrderNo:     "JO-AB12CD34",
			ClientName:  "Maria Cruz",
			MachineType: "Sewing machine",
			SerialNo:    "SN-100",
			Technician:  "Ben",
			Status:      domain.StatusCompleted,
			GrandTotal:  decimal.NewFromInt(1500),
			NetSales:    decimal.NewFromInt(900),
			Downpayment: decimal.NewFromInt(500),
			CreatedAt:   time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC),
			CompletedAt: &completed,
		},
		{
			OrderNo:     "JO-EF56GH78",
			ClientName:  "Jose Reyes",
			MachineType: "Generator",
			Status:      domain.StatusRepairing,
			GrandTotal:  decimal.NewFromInt(3200),
			CreatedAt:   time.Date(2024, time.April, 2, 14, 0, 0, 0, time.UTC),
		},
	}

	data, err := exportJobOrdersCSV(orders)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "order_no", records[0][0])
	assert.Equal(t, "JO-AB12CD34", records[1][0])
	assert.Equal(t, "1500.00", records[1][6])
	assert.Equal(t, "2024-03-20", records[1][10])
	// Open orders leave the completed column empty.
	assert.Equal(t, "", records[2][10])
	assert.Equal(t, "Repairing", records[2][5])
}

func TestExportJobOrdersXLSXRoundTrips(t *testing.T) {
	orders := []domain.JobOrder{
		{
			OrderNo:    "JO-AB12CD34",
			ClientName: "Maria Cruz",
			Status:     domain.StatusPending,
			GrandTotal: decimal.NewFromInt(250),
			CreatedAt:  time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC),
		},
	}
	data, err := exportJobOrdersXLSX(orders)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
