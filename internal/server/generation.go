package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
)

type toggleModuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// limitQuery parses ?limit= with a default, capped at 100.
func limitQuery(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func (s *Server) Generate(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req generationdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.generationSvc.Generate(c.Request.Context(), id, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (s *Server) GenerationHistory(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	moduleType := modules.Type(c.Query("module_type"))
	history, err := s.generationSvc.History(c.Request.Context(), id, moduleType, limitQuery(c, 20))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}

func (s *Server) ListTemplates(c *gin.Context) {
	moduleType := modules.Type(c.Param("moduleType"))
	if !modules.Valid(moduleType) {
		AbortWithError(c, generationdomain.ErrInvalidModule)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"module_type": moduleType,
		"templates":   generationdomain.TemplateTypes(moduleType),
	})
}

func (s *Server) ListModules(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	usage, err := s.generationSvc.ListModuleUsage(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, usage)
}

func (s *Server) ToggleModule(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req toggleModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	usage, err := s.generationSvc.SetModuleEnabled(c.Request.Context(), id, modules.Type(c.Param("moduleType")), *req.Enabled)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, usage)
}
