package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"rms-backend/internal/domain"
	"rms-backend/internal/metrics"
	"rms-backend/internal/repository"
	"rms-backend/internal/server/authctx"
	"rms-backend/internal/service"
)

type ReportHandler struct {
	Orders  repository.JobOrderRepository
	Reports service.ReportService
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/job-orders/export", h.exportJobOrders)
	r.Get("/reports/revenue/export", h.exportRevenue)
}

func (h ReportHandler) exportJobOrders(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := h.Orders.List(r.Context(), repository.JobOrderFilter{
		BranchID: user.BranchScope(),
		From:     from,
		To:       to,
		Limit:    10000,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	if from != nil && to != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", from.Format("20060102"), to.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := exportJobOrdersCSV(orders)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"job_orders_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportJobOrdersXLSX(orders)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"job_orders_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

// exportRevenue renders a full aggregator snapshot as a multi-sheet workbook.
func (h ReportHandler) exportRevenue(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.Reports.Snapshot(r.Context(), user.BranchScope(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := exportRevenueXLSX(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"revenue_%s.xlsx\"", time.Now().Format("20060102_150405")))
	_, _ = w.Write(data)
}

func exportJobOrdersCSV(orders []domain.JobOrder) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"order_no", "client", "machine_type", "serial_no", "technician", "status", "grand_total", "net_sales", "downpayment", "created_at", "completed_at"})
	for _, o := range orders {
		completed := ""
		if o.CompletedAt != nil {
			completed = o.CompletedAt.Format("2006-01-02")
		}
		_ = w.Write([]string{
			o.OrderNo,
			o.ClientName,
			o.MachineType,
			o.SerialNo,
			o.Technician,
			string(o.Status),
			o.GrandTotal.StringFixed(2),
			o.NetSales.StringFixed(2),
			o.Downpayment.StringFixed(2),
			o.CreatedAt.Format("2006-01-02"),
			completed,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportJobOrdersXLSX(orders []domain.JobOrder) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Job Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Order No", "Client", "Machine Type", "Serial No", "Technician", "Status", "Grand Total", "Net Sales", "Downpayment", "Created", "Completed"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, o := range orders {
		row := r + 2
		completed := ""
		if o.CompletedAt != nil {
			completed = o.CompletedAt.Format("2006-01-02")
		}
		grand, _ := o.GrandTotal.Float64()
		net, _ := o.NetSales.Float64()
		down, _ := o.Downpayment.Float64()
		values := []any{
			o.OrderNo,
			o.ClientName,
			o.MachineType,
			o.SerialNo,
			o.Technician,
			string(o.Status),
			grand,
			net,
			down,
			o.CreatedAt.Format("2006-01-02"),
			completed,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "E", 18)
	_ = f.SetColWidth(sheet, "F", "F", 16)
	_ = f.SetColWidth(sheet, "G", "I", 14)
	_ = f.SetColWidth(sheet, "J", "K", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "K1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRevenueXLSX(snap *metrics.Snapshot) ([]byte, error) {
	f := excelize.NewFile()

	summary := "Summary"
	index, err := f.NewSheet(summary)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	revenue, _ := snap.Totals.Revenue.Float64()
	net, _ := snap.Totals.Net.Float64()
	expenses, _ := snap.Totals.Expenses.Float64()
	profit, _ := snap.Totals.Profit.Float64()
	aov, _ := snap.Totals.AverageOrderValue.Float64()
	rows := [][]any{
		{"Metric", "Value"},
		{"Revenue", revenue},
		{"Net Sales", net},
		{"Expenses", expenses},
		{"Profit", profit},
		{"Sales", snap.Totals.Sales},
		{"Clients", snap.Totals.Clients},
		{"Average Order Value", aov},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(summary, cell, v)
		}
	}
	_ = f.SetColWidth(summary, "A", "A", 22)
	_ = f.SetColWidth(summary, "B", "B", 16)

	monthly := "Monthly"
	if _, err := f.NewSheet(monthly); err != nil {
		return nil, err
	}
	header := []string{"Month", "Gross", "Net", "Expenses", "Profit", "Sales", "Clients"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(monthly, cell, v)
	}
	for r, m := range snap.Monthly {
		row := r + 2
		gross, _ := m.Gross.Float64()
		mnet, _ := m.Net.Float64()
		mexp, _ := m.Expenses.Float64()
		mprofit, _ := m.Profit.Float64()
		values := []any{m.Month.String(), gross, mnet, mexp, mprofit, m.Sales, m.Clients}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(monthly, cell, v)
		}
	}
	_ = f.SetColWidth(monthly, "A", "A", 12)
	_ = f.SetColWidth(monthly, "B", "G", 12)

	weekly := "Weekly"
	if _, err := f.NewSheet(weekly); err != nil {
		return nil, err
	}
	wheader := []string{"Week", "Start", "End", "Gross", "Net", "Expenses", "Profit", "Sales"}
	for c, v := range wheader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(weekly, cell, v)
	}
	for r, wk := range snap.Weekly {
		row := r + 2
		gross, _ := wk.Gross.Float64()
		wnet, _ := wk.Net.Float64()
		wexp, _ := wk.Expenses.Float64()
		wprofit, _ := wk.Profit.Float64()
		values := []any{
			wk.Week,
			wk.Start.Format("2006-01-02"),
			wk.End.Format("2006-01-02"),
			gross, wnet, wexp, wprofit, wk.Sales,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(weekly, cell, v)
		}
	}
	_ = f.SetColWidth(weekly, "A", "A", 8)
	_ = f.SetColWidth(weekly, "B", "C", 12)
	_ = f.SetColWidth(weekly, "D", "H", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(summary, "A1", "B1", style)
	_ = f.SetCellStyle(monthly, "A1", "G1", style)
	_ = f.SetCellStyle(weekly, "A1", "H1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
