package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
)

func (s *Server) GenerateSupportResponse(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.GenerateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.workflowSvc.GenerateSupportResponse(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (s *Server) CreateTicket(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.CreateTicket(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) ListTickets(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListTickets(c.Request.Context(), id, limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) UpdateTicket(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ticketID, err := snowflake.ParseString(c.Param("ticketId"))
	if err != nil {
		AbortWithError(c, errInvalidID)
		return
	}

	var req workflowdomain.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.workflowSvc.UpdateTicket(c.Request.Context(), id, ticketID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, artifact)
}

func (s *Server) SupportChat(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.Chat(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (s *Server) UpsertFAQ(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.UpsertFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.workflowSvc.UpsertFAQ(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, artifact)
}

func (s *Server) ListFAQs(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListFAQs(c.Request.Context(), id, limitQuery(c, 50))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) SupportAnalytics(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.workflowSvc.SupportStats(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
