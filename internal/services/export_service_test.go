package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func exportFixture() *stubAssessmentStore {
	return &stubAssessmentStore{assessments: []*Assessment{
		{
			ID: "A1", Email: "ada@example.com", Status: StatusPending, BMI: 22.9,
			CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Draft: Draft{
				Personal:   PersonalInfo{Name: "Ada", Age: "34", Gender: "female"},
				Physical:   PhysicalStats{Height: "175", Weight: "70"},
				Lifestyle:  Lifestyle{ActivityLevel: "moderate"},
				Goals:      Goals{PrimaryGoal: "strength"},
				Commitment: Commitment{ExperienceLevel: "beginner"},
			},
		},
		{ID: "A2", Status: StatusCompleted, CreatedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)},
	}}
}

func TestExportCSV(t *testing.T) {
	store := exportFixture()
	svc := NewExportService(store)

	b, err := svc.ExportCSV("", "coach@vitalpath.fit")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "assessment_id" || rows[0][9] != "bmi" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "A1" || rows[1][1] != "ada@example.com" || rows[1][9] != "22.9" {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if rows[2][0] != "A2" || rows[2][9] != "" {
		t.Fatalf("row 2 = %v", rows[2])
	}
	if len(store.audit) != 1 || store.audit[0].Action != "export_csv" {
		t.Fatalf("audit = %+v", store.audit)
	}
}

func TestExportCSVStatusFilter(t *testing.T) {
	svc := NewExportService(exportFixture())
	b, err := svc.ExportCSV(StatusCompleted, "coach@vitalpath.fit")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "A2" {
		t.Fatalf("filtered rows = %v", rows)
	}
}

func TestExportXLSX(t *testing.T) {
	store := exportFixture()
	svc := NewExportService(store)

	b, err := svc.ExportXLSX("", "coach@vitalpath.fit")
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	// XLSX is a zip container; checking the magic bytes is enough here.
	if len(b) < 4 || b[0] != 'P' || b[1] != 'K' {
		t.Fatalf("output does not look like an xlsx file (%d bytes)", len(b))
	}
	if len(store.audit) != 1 || store.audit[0].Action != "export_xlsx" {
		t.Fatalf("audit = %+v", store.audit)
	}
}
