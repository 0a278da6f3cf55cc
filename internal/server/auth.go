package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type emailTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) Register(c *gin.Context) {
	var req authdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, resp)
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (s *Server) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	access, err := s.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"access_token": access})
}

func (s *Server) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "logged_out"})
}

func (s *Server) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		var req emailTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, err)
			return
		}
		token = req.Token
	}

	if err := s.authSvc.VerifyEmail(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "email_verified"})
}

// ForgotPassword answers identically whether or not the address exists,
// so it cannot be used to probe for accounts.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "reset_email_sent"})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authSvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "password_reset"})
}

func (s *Server) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, errUnauthorized)
		return
	}

	respondOK(c, http.StatusOK, authdomain.UserView{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	})
}
