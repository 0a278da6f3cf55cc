package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
)

func (s *Server) ListBusinesses(c *gin.Context) {
	user := currentUser(c)

	list, err := s.businessSvc.List(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (s *Server) CreateBusiness(c *gin.Context) {
	user := currentUser(c)

	var req businessdomain.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	biz, err := s.businessSvc.Create(c.Request.Context(), user.ID, user.Role, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, biz)
}

func (s *Server) GetBusiness(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.businessSvc.Get(c.Request.Context(), id, user.ID, user.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

func (s *Server) UpdateBusiness(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req businessdomain.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	biz, err := s.businessSvc.Update(c.Request.Context(), id, user.ID, user.Role, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, biz)
}

func (s *Server) DeleteBusiness(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.businessSvc.Delete(c.Request.Context(), id, user.ID, user.Role); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "business_deleted"})
}

func (s *Server) BusinessStats(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.businessSvc.Stats(c.Request.Context(), id, user.ID, user.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
