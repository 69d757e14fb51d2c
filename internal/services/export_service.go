package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

type ExportStore interface {
	ListAssessments(status string) ([]*Assessment, error)
	AddAudit(entry AuditEntry)
}

// ExportService renders assessment records for back-office download.
type ExportService struct {
	store ExportStore
	now   func() time.Time
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var exportHeader = []string{
	"assessment_id", "email", "status", "created_at",
	"name", "age", "gender", "height", "weight", "bmi",
	"activity_level", "primary_goal", "experience_level",
}

func exportRow(a *Assessment) []string {
	bmi := ""
	if a.BMI > 0 {
		bmi = strconv.FormatFloat(a.BMI, 'f', 1, 64)
	}
	d := a.Draft
	return []string{
		a.ID, a.Email, a.Status, a.CreatedAt.Format(time.RFC3339),
		d.Personal.Name, d.Personal.Age, d.Personal.Gender,
		d.Physical.Height, d.Physical.Weight, bmi,
		d.Lifestyle.ActivityLevel, d.Goals.PrimaryGoal, d.Commitment.ExperienceLevel,
	}
}

// ExportCSV renders assessments (optionally filtered by status) as CSV.
func (s *ExportService) ExportCSV(status, actor string) ([]byte, error) {
	list, err := s.store.ListAssessments(status)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, a := range list {
		if err := w.Write(exportRow(a)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "export_csv", Target: "assessments", Note: strconv.Itoa(len(list))})
	return buf.Bytes(), nil
}

// ExportXLSX renders assessments as a styled spreadsheet.
func (s *ExportService) ExportXLSX(status, actor string) ([]byte, error) {
	list, err := s.store.ListAssessments(status)
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	const sheet = "Assessments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
		_ = f.SetCellStyle(sheet, first, last, headerStyle)
	}

	for rowIdx, a := range list {
		for col, v := range exportRow(a) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "export_xlsx", Target: "assessments", Note: strconv.Itoa(len(list))})
	return buf.Bytes(), nil
}
