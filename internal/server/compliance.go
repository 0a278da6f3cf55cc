package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
)

func (s *Server) GenerateChecklist(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.GenerateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.GenerateChecklist(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) GeneratePolicy(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.GeneratePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.GeneratePolicy(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) CreateAudit(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.workflowSvc.CreateAudit(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

func (s *Server) UpdateAudit(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	auditID, err := snowflake.ParseString(c.Param("auditId"))
	if err != nil {
		AbortWithError(c, errInvalidID)
		return
	}

	var req workflowdomain.UpdateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.workflowSvc.UpdateAudit(c.Request.Context(), id, auditID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, artifact)
}

func (s *Server) ListComplianceArtifacts(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListComplianceArtifacts(c.Request.Context(), id, c.Query("category"), limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) Regulations(c *gin.Context) {
	respondOK(c, http.StatusOK, s.workflowSvc.Regulations(c.Query("industry")))
}

func (s *Server) ComplianceAnalytics(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.workflowSvc.ComplianceStats(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
