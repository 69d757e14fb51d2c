package services

import (
	"testing"
	"time"
)

func day(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }

func TestDashboardSummary(t *testing.T) {
	store := &stubAssessmentStore{assessments: []*Assessment{
		{ID: "A1", Status: StatusPending, BMI: 22.0, CreatedAt: day(1, 9),
			Draft: Draft{Goals: Goals{PrimaryGoal: "strength"}}},
		{ID: "A2", Status: StatusPending, BMI: 26.0, CreatedAt: day(1, 15),
			Draft: Draft{Goals: Goals{PrimaryGoal: "weight_loss"}}},
		{ID: "A3", Status: StatusCompleted, CreatedAt: day(2, 10),
			Draft: Draft{Goals: Goals{PrimaryGoal: "strength"}}},
	}}
	svc := NewDashboardService(store)

	sum, err := svc.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 3 {
		t.Fatalf("total = %d, want 3", sum.Total)
	}
	if sum.CountsByStatus[StatusPending] != 2 || sum.CountsByStatus[StatusCompleted] != 1 {
		t.Fatalf("counts = %v", sum.CountsByStatus)
	}
	// A3 has no stored BMI and is excluded from the average.
	if sum.AverageBMI != 24.0 {
		t.Fatalf("average bmi = %v, want 24.0", sum.AverageBMI)
	}
	if sum.GoalBreakdown["strength"] != 2 || sum.GoalBreakdown["weight_loss"] != 1 {
		t.Fatalf("goal breakdown = %v", sum.GoalBreakdown)
	}
	if len(sum.Timeseries) != 2 {
		t.Fatalf("timeseries = %v", sum.Timeseries)
	}
	if sum.Timeseries[0].Date != "2026-03-01" || sum.Timeseries[0].Count != 2 {
		t.Fatalf("timeseries[0] = %+v", sum.Timeseries[0])
	}
	if sum.Timeseries[1].Date != "2026-03-02" || sum.Timeseries[1].Count != 1 {
		t.Fatalf("timeseries[1] = %+v", sum.Timeseries[1])
	}
}

func TestDashboardSummaryEmpty(t *testing.T) {
	svc := NewDashboardService(&stubAssessmentStore{})
	sum, err := svc.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 0 || sum.AverageBMI != 0 || len(sum.Timeseries) != 0 {
		t.Fatalf("empty summary = %+v", sum)
	}
}
