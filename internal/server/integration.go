package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	integrationdomain "github.com/smallbiznis/advisorhub/internal/integration/domain"
)

func (s *Server) ListIntegrations(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	list, err := s.integrationSvc.List(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) ConnectIntegration(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req integrationdomain.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.integrationSvc.Connect(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, view)
}

func (s *Server) DisconnectIntegration(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	kind := integrationdomain.Kind(c.Param("type"))
	if err := s.integrationSvc.Disconnect(c.Request.Context(), id, kind); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "integration_disconnected"})
}

func (s *Server) SyncIntegration(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	kind := integrationdomain.Kind(c.Param("type"))
	result, err := s.integrationSvc.Sync(c.Request.Context(), id, kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (s *Server) IntegrationOAuthURL(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	kind := integrationdomain.Kind(c.Param("type"))
	url, err := s.integrationSvc.OAuthURL(c.Request.Context(), id, kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"url": url})
}

// IntegrationCallback finishes the provider redirect leg of the OAuth
// flow. The state token carries the business binding, so no bearer
// token is required here.
func (s *Server) IntegrationCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		AbortWithError(c, integrationdomain.ErrInvalidState)
		return
	}

	view, err := s.integrationSvc.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}
