package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/scheduling"
	"github.com/jakechorley/manpower/pkg/core/services"
)

type createRequestBody struct {
	SubSectionID    int64  `json:"subSectionId" binding:"required"`
	ShiftID         int64  `json:"shiftId" binding:"required"`
	Date            string `json:"date" binding:"required"`
	RequestedAmount int    `json:"requestedAmount"`
	MaleCount       int    `json:"maleCount"`
	FemaleCount     int    `json:"femaleCount"`
}

type fulfillBody struct {
	EmployeeIDs []int64 `json:"employeeIds" binding:"required"`
}

type scheduleResponseBody struct {
	EmployeeID int64  `json:"employeeId" binding:"required"`
	Reason     string `json:"reason"`
}

type filePermitBody struct {
	EmployeeID int64  `json:"employeeId" binding:"required"`
	Type       string `json:"type" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	Reason     string `json:"reason"`
}

type requestDTO struct {
	ID              int64  `json:"id"`
	SubSectionID    int64  `json:"subSectionId"`
	ShiftID         int64  `json:"shiftId"`
	Date            string `json:"date"`
	RequestedAmount int    `json:"requestedAmount"`
	MaleCount       int    `json:"maleCount"`
	FemaleCount     int    `json:"femaleCount"`
	Status          string `json:"status"`
}

func toRequestDTO(r *model.ManpowerRequest) requestDTO {
	return requestDTO{
		ID:              r.ID,
		SubSectionID:    r.SubSectionID,
		ShiftID:         r.ShiftID,
		Date:            r.Date.Format(model.DateLayout),
		RequestedAmount: r.RequestedAmount,
		MaleCount:       r.MaleCount,
		FemaleCount:     r.FemaleCount,
		Status:          string(r.Status),
	}
}

type scheduleDTO struct {
	ID              string `json:"id"`
	EmployeeID      int64  `json:"employeeId"`
	RequestID       int64  `json:"requestId"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func toScheduleDTO(s model.Schedule) scheduleDTO {
	return scheduleDTO{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		RequestID:       s.RequestID,
		Date:            s.Date.Format(model.DateLayout),
		Status:          string(s.Status),
		RejectionReason: s.RejectionReason,
	}
}

func toScheduleDTOs(schedules []model.Schedule) []scheduleDTO {
	result := make([]scheduleDTO, len(schedules))
	for i, s := range schedules {
		result[i] = toScheduleDTO(s)
	}
	return result
}

type permitDTO struct {
	ID         string `json:"id"`
	EmployeeID int64  `json:"employeeId"`
	Type       string `json:"type"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
}

func toPermitDTO(p *model.Permit) permitDTO {
	return permitDTO{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		Type:       string(p.Type),
		StartDate:  p.StartDate.Format(model.DateLayout),
		EndDate:    p.EndDate.Format(model.DateLayout),
		Reason:     p.Reason,
		Status:     string(p.Status),
	}
}

type candidateDTO struct {
	Rank               int             `json:"rank"`
	EmployeeID         int64           `json:"employeeId"`
	Name               string          `json:"name"`
	Gender             string          `json:"gender"`
	Type               string          `json:"type"`
	Pool               string          `json:"pool"`
	AlreadyScheduled   bool            `json:"alreadyScheduled"`
	WeeklyCount        int             `json:"weeklyCount"`
	Rating             int             `json:"rating"`
	WorkingDayWeight   int             `json:"workingDayWeight"`
	TotalAssignedHours decimal.Decimal `json:"totalAssignedHours"`
	TotalScore         decimal.Decimal `json:"totalScore"`
}

type shortfallDTO struct {
	Kind        string `json:"kind"`
	Required    int    `json:"required"`
	Selected    int    `json:"selected"`
	Description string `json:"description"`
}

type warningDTO struct {
	EmployeeID  int64  `json:"employeeId"`
	ScheduleID  string `json:"scheduleId"`
	RequestID   int64  `json:"requestId"`
	Description string `json:"description"`
}

type rankResponse struct {
	Request     requestDTO     `json:"request"`
	Candidates  []candidateDTO `json:"candidates"`
	SelectedIDs []int64        `json:"selectedEmployeeIds"`
	Shortfalls  []shortfallDTO `json:"shortfalls"`
	Warnings    []warningDTO   `json:"warnings"`
}

func toRankResponse(result *services.RankResult) rankResponse {
	resp := rankResponse{
		Request:     toRequestDTO(result.Request),
		Candidates:  make([]candidateDTO, len(result.Candidates)),
		SelectedIDs: result.Selection.EmployeeIDs(),
		Shortfalls:  make([]shortfallDTO, len(result.Selection.Shortfalls)),
		Warnings:    make([]warningDTO, len(result.Warnings)),
	}
	for i, c := range result.Candidates {
		resp.Candidates[i] = toCandidateDTO(i+1, c)
	}
	for i, s := range result.Selection.Shortfalls {
		resp.Shortfalls[i] = shortfallDTO{Kind: string(s.Kind), Required: s.Required, Selected: s.Selected, Description: s.Description}
	}
	for i, w := range result.Warnings {
		resp.Warnings[i] = warningDTO{EmployeeID: w.EmployeeID, ScheduleID: w.ScheduleID, RequestID: w.RequestID, Description: w.Description}
	}
	return resp
}

func toCandidateDTO(rank int, c scheduling.Candidate) candidateDTO {
	return candidateDTO{
		Rank:               rank,
		EmployeeID:         c.Employee.ID,
		Name:               c.Employee.Name,
		Gender:             string(c.Employee.Gender),
		Type:               string(c.Employee.Type),
		Pool:               string(c.Pool),
		AlreadyScheduled:   c.AlreadyScheduled,
		WeeklyCount:        c.WeeklyCount,
		Rating:             c.Rating,
		WorkingDayWeight:   c.WorkingDayWeight,
		TotalAssignedHours: c.TotalAssignedHours,
		TotalScore:         c.TotalScore,
	}
}

type notificationFailureDTO struct {
	EmployeeID int64  `json:"employeeId"`
	ScheduleID string `json:"scheduleId"`
	Error      string `json:"error"`
}

type fulfillResponse struct {
	Request              requestDTO               `json:"request"`
	Schedules            []scheduleDTO            `json:"schedules"`
	NotificationFailures []notificationFailureDTO `json:"notificationFailures"`
}

func toFulfillResponse(result *services.FulfillResult) fulfillResponse {
	resp := fulfillResponse{
		Request:              toRequestDTO(result.Request),
		Schedules:            toScheduleDTOs(result.Schedules),
		NotificationFailures: make([]notificationFailureDTO, len(result.NotificationFailures)),
	}
	for i, f := range result.NotificationFailures {
		resp.NotificationFailures[i] = notificationFailureDTO{EmployeeID: f.EmployeeID, ScheduleID: f.ScheduleID, Error: f.Err.Error()}
	}
	return resp
}

type permitDecisionResponse struct {
	Permit               permitDTO     `json:"permit"`
	ConflictingSchedules []scheduleDTO `json:"conflictingSchedules"`
}
