package model

import (
	"time"
)

// DashboardResponse aggregates company-wide totals for a date range
type DashboardResponse struct {
	TotalIncome        string               `json:"total_income"`
	TotalExpense       string               `json:"total_expense"`
	NetResult          string               `json:"net_result"`
	ProjectCounts      ProjectStatusCounts  `json:"project_counts"`
	OverdueMilestones  int64                `json:"overdue_milestones"`
	OverdueCategories  []CategoryDueSummary `json:"overdue_categories"`
	TimeRangeStartDate time.Time            `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time            `json:"time_range_end_date"`
}

// ProjectStatusCounts breaks projects down by status
type ProjectStatusCounts struct {
	Open      int64 `json:"open"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// CategoryDueSummary lists a recurring category whose due date has passed
type CategoryDueSummary struct {
	CategoryID   string     `json:"category_id"`
	CategoryName string     `json:"category_name"`
	DueDate      *time.Time `json:"due_date"`
}
