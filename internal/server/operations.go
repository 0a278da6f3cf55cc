package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.CreateInvoice(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) ListInvoices(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListInvoices(c.Request.Context(), id, limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) ScheduleAppointment(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.ScheduleAppointment(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) ListAppointments(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListAppointments(c.Request.Context(), id, limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}
