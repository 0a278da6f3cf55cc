package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
)

func (s *Server) GenerateMarketing(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.GenerateMarketingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.workflowSvc.GenerateMarketing(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (s *Server) SaveCampaign(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req workflowdomain.SaveCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.workflowSvc.SaveCampaign(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, artifact)
}

func (s *Server) ListCampaigns(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.workflowSvc.ListCampaigns(c.Request.Context(), id, c.Query("type"), limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) ScheduleCampaign(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	campaignID, err := snowflake.ParseString(c.Param("campaignId"))
	if err != nil {
		AbortWithError(c, errInvalidID)
		return
	}

	var req workflowdomain.ScheduleCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.workflowSvc.ScheduleCampaign(c.Request.Context(), id, campaignID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, artifact)
}

func (s *Server) MarketingAnalytics(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.workflowSvc.MarketingStats(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
