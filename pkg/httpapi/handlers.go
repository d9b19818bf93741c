package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/services"
)

func parseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("id", "invalid id %q", c.Param("id"))
	}
	return id, nil
}

func parseDateField(field, value string) (time.Time, error) {
	date, err := model.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, model.NewValidationError(field, "invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

// referenceDate reads the optional ?date= query parameter, defaulting to today
func (s *Server) referenceDate(c *gin.Context) (time.Time, error) {
	value := c.Query("date")
	if value == "" {
		return model.DateOf(s.today()), nil
	}
	return parseDateField("date", value)
}

func (s *Server) bindJSON(c *gin.Context, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		s.error(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), nil)
		return false
	}
	return true
}

func (s *Server) createRequest(c *gin.Context) {
	var body createRequestBody
	if !s.bindJSON(c, &body) {
		return
	}

	date, err := parseDateField("date", body.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	req, err := services.CreateRequest(c.Request.Context(), s.store, s.logger, services.NewRequest{
		SubSectionID:    body.SubSectionID,
		ShiftID:         body.ShiftID,
		Date:            date,
		RequestedAmount: body.RequestedAmount,
		MaleCount:       body.MaleCount,
		FemaleCount:     body.FemaleCount,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusCreated, toRequestDTO(req))
}

func (s *Server) rankCandidates(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	date, err := s.referenceDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := services.RankCandidates(c.Request.Context(), s.store, s.metrics, s.logger, id, date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toRankResponse(result))
}

func (s *Server) fulfillRequest(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	var body fulfillBody
	if !s.bindJSON(c, &body) {
		return
	}

	result, err := services.Fulfill(c.Request.Context(), s.store, s.notifier, s.logger, id, body.EmployeeIDs)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toFulfillResponse(result))
}

func (s *Server) rejectRequest(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	req, err := services.RejectRequest(c.Request.Context(), s.store, s.logger, id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toRequestDTO(req))
}

func (s *Server) acceptSchedule(c *gin.Context) {
	var body scheduleResponseBody
	if !s.bindJSON(c, &body) {
		return
	}

	schedule, err := services.AcceptSchedule(c.Request.Context(), s.store, s.logger, c.Param("id"), body.EmployeeID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toScheduleDTO(*schedule))
}

func (s *Server) rejectSchedule(c *gin.Context) {
	var body scheduleResponseBody
	if !s.bindJSON(c, &body) {
		return
	}

	date, err := s.referenceDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	schedule, err := services.RejectSchedule(c.Request.Context(), s.store, s.logger, c.Param("id"), body.EmployeeID, body.Reason, date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toScheduleDTO(*schedule))
}

func (s *Server) filePermit(c *gin.Context) {
	var body filePermitBody
	if !s.bindJSON(c, &body) {
		return
	}

	start, err := parseDateField("startDate", body.StartDate)
	if err != nil {
		s.writeError(c, err)
		return
	}
	end, err := parseDateField("endDate", body.EndDate)
	if err != nil {
		s.writeError(c, err)
		return
	}

	permit, err := services.FilePermit(c.Request.Context(), s.store, s.logger, services.NewPermit{
		EmployeeID: body.EmployeeID,
		Type:       model.PermitType(body.Type),
		StartDate:  start,
		EndDate:    end,
		Reason:     body.Reason,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusCreated, toPermitDTO(permit))
}

func (s *Server) approvePermit(c *gin.Context) {
	date, err := s.referenceDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	decision, err := services.ApprovePermit(c.Request.Context(), s.store, s.logger, c.Param("id"), date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, permitDecisionResponse{
		Permit:               toPermitDTO(decision.Permit),
		ConflictingSchedules: toScheduleDTOs(decision.ConflictingSchedules),
	})
}

func (s *Server) rejectPermit(c *gin.Context) {
	permit, err := services.RejectPermit(c.Request.Context(), s.store, s.logger, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toPermitDTO(permit))
}

func (s *Server) cancelPermit(c *gin.Context) {
	date, err := s.referenceDate(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	permit, err := services.CancelPermit(c.Request.Context(), s.store, s.logger, c.Param("id"), date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.success(c, http.StatusOK, toPermitDTO(permit))
}
