package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lendledger/internal/clients"
	"lendledger/internal/domain"
	"lendledger/internal/repository"
)

const (
	reportTTL    = 24 * time.Hour
	reportSetKey = "report_ids"

	maxRowsForReport = 500_000
)

// ReportStatus is the redis-persisted state of one statement export.
type ReportStatus struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	Filters  map[string]any `json:"filters"`
	Progress float64        `json:"progress"`
	FileURL  *string        `json:"file_url"`
	Error    *string        `json:"error,omitempty"`
	Created  time.Time      `json:"created"`
}

// StatementStorage is where finished statement files end up. Local disk and
// S3-compatible object storage both satisfy it.
type StatementStorage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	GetURL(ctx context.Context, fileName string) (string, error)
}

type ReportRepository interface {
	ListForReport(ctx context.Context, f repository.ReportFilter) ([]repository.ReportRow, error)
}

type StatementColumn struct {
	Header string
	Value  func(row repository.ReportRow, asOf time.Time) any
}

var statementColumns = map[string]StatementColumn{
	"id":       {Header: "Payment ID", Value: func(r repository.ReportRow, _ time.Time) any { return r.Payment.ID }},
	"borrower": {Header: "Borrower", Value: func(r repository.ReportRow, _ time.Time) any { return r.BorrowerName }},
	"loan_id":  {Header: "Loan ID", Value: func(r repository.ReportRow, _ time.Time) any { return r.LoanID }},
	"strategy": {Header: "Strategy", Value: func(r repository.ReportRow, _ time.Time) any { return string(r.Strategy) }},
	"due_date": {Header: "Due Date", Value: func(r repository.ReportRow, _ time.Time) any { return r.Payment.DueDate.Format("2006-01-02") }},
	"amount":   {Header: "Amount", Value: func(r repository.ReportRow, _ time.Time) any { return r.Payment.Amount.String() }},
	"paid_amount": {Header: "Paid", Value: func(r repository.ReportRow, _ time.Time) any {
		return r.Payment.PaidAmount.String()
	}},
	"due_amount": {Header: "Outstanding", Value: func(r repository.ReportRow, _ time.Time) any {
		return r.Payment.DueAmount.String()
	}},
	"status": {Header: "Status", Value: func(r repository.ReportRow, asOf time.Time) any {
		return string(domain.ClassifyStatus(r.Payment, asOf))
	}},
	"paid_date": {Header: "Paid Date", Value: func(r repository.ReportRow, _ time.Time) any {
		if r.Payment.PaidDate == nil {
			return ""
		}
		return r.Payment.PaidDate.Format("2006-01-02")
	}},
	"payment_method": {Header: "Method", Value: func(r repository.ReportRow, _ time.Time) any { return r.Payment.PaymentMethod }},
	"notes":          {Header: "Notes", Value: func(r repository.ReportRow, _ time.Time) any { return r.Payment.Notes }},
}

var defaultStatementFields = []string{
	"id", "borrower", "loan_id", "strategy", "due_date",
	"amount", "paid_amount", "due_amount", "status",
	"paid_date", "payment_method", "notes",
}

type ReportService struct {
	repo    ReportRepository
	cache   *clients.RedisClient
	storage StatementStorage
	ws      *clients.WebSocketClient
	log     *zap.Logger
	now     func() time.Time
}

func NewReportService(repo ReportRepository, cache *clients.RedisClient, storage StatementStorage, ws *clients.WebSocketClient, log *zap.Logger) *ReportService {
	return &ReportService{
		repo:    repo,
		cache:   cache,
		storage: storage,
		ws:      ws,
		log:     log,
		now:     time.Now,
	}
}

func (s *ReportService) saveStatus(ctx context.Context, st *ReportStatus) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, st.Key, string(data), reportTTL); err != nil {
		return err
	}
	return s.cache.SAdd(ctx, reportSetKey, st.Key)
}

// StartScheduleReport queues an asynchronous XLSX statement and returns the
// report id the caller can poll.
func (s *ReportService) StartScheduleReport(ctx context.Context, selected []string, filter repository.ReportFilter) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("statement storage not configured")
	}
	if len(selected) == 0 {
		selected = defaultStatementFields
	}
	for _, field := range selected {
		if _, ok := statementColumns[field]; !ok {
			return "", &domain.ValidationError{Field: "fields", Message: fmt.Sprintf("unknown field %q", field)}
		}
	}

	reportID := fmt.Sprintf("reports:%s", uuid.NewString())
	now := s.now()

	status := &ReportStatus{
		Key:      reportID,
		Type:     "schedule",
		Filters:  buildReportFiltersMap(filter, selected),
		Progress: 0,
		Created:  now,
	}
	if err := s.saveStatus(ctx, status); err != nil {
		s.log.Warn("save report status", zap.String("report_id", reportID), zap.Error(err))
	}

	go s.runScheduleReport(context.Background(), reportID, selected, filter, now)

	return reportID, nil
}

func (s *ReportService) runScheduleReport(ctx context.Context, reportID string, selected []string, filter repository.ReportFilter, createdAt time.Time) {
	status := &ReportStatus{
		Key:     reportID,
		Type:    "schedule",
		Filters: buildReportFiltersMap(filter, selected),
		Created: createdAt,
	}

	fail := func(err error) {
		msg := err.Error()
		s.log.Error("schedule report failed", zap.String("report_id", reportID), zap.Error(err))
		status.Error = &msg
		status.Progress = 100
		_ = s.saveStatus(ctx, status)
		if s.ws != nil {
			_ = s.ws.NotifyReportFailed(ctx, reportID, msg)
		}
	}

	rows, err := s.repo.ListForReport(ctx, filter)
	if err != nil {
		fail(fmt.Errorf("load statement rows: %w", err))
		return
	}
	if len(rows) > maxRowsForReport {
		fail(fmt.Errorf("too many rows for statement (over %d)", maxRowsForReport))
		return
	}

	var cols []StatementColumn
	for _, key := range selected {
		cols = append(cols, statementColumns[key])
	}

	f := excelize.NewFile()
	sheet := "Schedule"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	asOf := s.now()
	total := len(rows)
	chunkSize := 1000
	for i, row := range rows {
		for colIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(row, asOf))
		}

		if (i+1)%chunkSize == 0 || i == total-1 {
			progress := math.Round(float64(i+1) / float64(total) * 100.0)
			if progress >= 100 {
				progress = 95
			}
			status.Progress = progress
			_ = s.saveStatus(ctx, status)
			if s.ws != nil {
				_ = s.ws.NotifyReportProgress(ctx, reportID, progress, "generating")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		fail(fmt.Errorf("write workbook: %w", err))
		return
	}

	fileName := fmt.Sprintf("schedule_%s.xlsx", s.now().Format("20060102_150405"))

	status.Progress = 95
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, reportID, 95, "uploading")
	}

	savedName, err := s.storage.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		fail(fmt.Errorf("save statement: %w", err))
		return
	}
	url, err := s.storage.GetURL(ctx, savedName)
	if err != nil {
		fail(fmt.Errorf("statement url: %w", err))
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, reportID, 100, "ready")
		_ = s.ws.NotifyReportComplete(ctx, reportID, url, fileName)
	}
	s.log.Info("schedule report ready",
		zap.String("report_id", reportID),
		zap.Int("rows", total),
		zap.String("file", savedName))
}

// GetReports lists known statement exports, newest first.
func (s *ReportService) GetReports(ctx context.Context) ([]ReportStatus, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("report cache not configured")
	}

	keys, err := s.cache.SMembers(ctx, reportSetKey)
	if err != nil {
		return nil, fmt.Errorf("list report keys: %w", err)
	}

	var statuses []ReportStatus
	for _, key := range keys {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			continue
		}
		var st ReportStatus
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			continue
		}
		statuses = append(statuses, st)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})
	return statuses, nil
}

func (s *ReportService) GetReport(ctx context.Context, reportID string) (*ReportStatus, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("report cache not configured")
	}

	data, err := s.cache.Get(ctx, reportID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var st ReportStatus
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("parse report status: %w", err)
	}
	return &st, nil
}

func buildReportFiltersMap(f repository.ReportFilter, fields []string) map[string]any {
	m := map[string]any{}
	if f.LoanID != nil {
		m["loan_id"] = *f.LoanID
	} else {
		m["loan_id"] = nil
	}
	if f.BorrowerID != nil {
		m["borrower_id"] = *f.BorrowerID
	} else {
		m["borrower_id"] = nil
	}
	m["fields"] = fields
	return m
}
