package services

import (
	"math"
	"sort"
)

type DashboardStore interface {
	ListAssessments(status string) ([]*Assessment, error)
}

// DashboardService aggregates assessment records for the admin dashboard.
type DashboardService struct {
	store DashboardStore
}

type DashboardTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardSummary struct {
	Total          int                   `json:"total"`
	CountsByStatus map[string]int        `json:"counts_by_status"`
	Timeseries     []DashboardTimeseries `json:"timeseries"`
	AverageBMI     float64               `json:"average_bmi"`
	GoalBreakdown  map[string]int        `json:"goal_breakdown"`
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary computes the counts the dashboard cards render: totals per
// status, submissions per day, the average stored BMI and a breakdown of
// primary goals.
func (s *DashboardService) Summary() (*DashboardSummary, error) {
	list, err := s.store.ListAssessments("")
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	goals := map[string]int{}
	countsByDay := map[string]int{}
	bmiSum := 0.0
	bmiN := 0
	for _, a := range list {
		counts[a.Status]++
		countsByDay[a.CreatedAt.UTC().Format("2006-01-02")]++
		if g := a.Draft.Goals.PrimaryGoal; g != "" {
			goals[g]++
		}
		if a.BMI > 0 {
			bmiSum += a.BMI
			bmiN++
		}
	}
	avg := 0.0
	if bmiN > 0 {
		avg = math.Round(bmiSum/float64(bmiN)*10) / 10
	}
	return &DashboardSummary{
		Total:          len(list),
		CountsByStatus: counts,
		Timeseries:     buildTimeseries(countsByDay),
		AverageBMI:     avg,
		GoalBreakdown:  goals,
	}, nil
}

func buildTimeseries(counts map[string]int) []DashboardTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DashboardTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, DashboardTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
