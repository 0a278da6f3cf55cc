package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/advisorhub/internal/billing/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	respondOK(c, http.StatusOK, s.subscriptionSvc.Plans(c.Request.Context()))
}

func (s *Server) CurrentSubscription(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	current, err := s.subscriptionSvc.GetByBusiness(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, current)
}

// BillingHistory returns the invoice trail recorded from payment
// webhooks.
func (s *Server) BillingHistory(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	current, err := s.subscriptionSvc.GetByBusiness(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, current.Invoices)
}

func (s *Server) CheckoutSubscription(c *gin.Context) {
	user := currentUser(c)

	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req billingdomain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.billingSvc.Checkout(c.Request.Context(), id, user.Email, req.Tier)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (s *Server) BillingPortal(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.billingSvc.Portal(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (s *Server) CancelSubscription(c *gin.Context) {
	id, err := businessID(c, "businessId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.billingSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// StripeWebhook verifies the payment provider signature over the raw
// body before any JSON decoding happens.
func (s *Server) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := s.billingSvc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"received": true})
}
