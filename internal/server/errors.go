package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/auth/token"
	billingdomain "github.com/smallbiznis/advisorhub/internal/billing/domain"
	"github.com/smallbiznis/advisorhub/internal/billing/stripe"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	integrationdomain "github.com/smallbiznis/advisorhub/internal/integration/domain"
	"github.com/smallbiznis/advisorhub/internal/providers/llm"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
)

var (
	errUnauthorized    = errors.New("unauthorized")
	errTooManyRequests = errors.New("too_many_requests")
	errInvalidID       = errors.New("invalid_id")
)

// respondOK wraps every successful payload in the common envelope.
func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// AbortWithError records the error; ErrorHandlingMiddleware renders it
// once the chain unwinds.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandlingMiddleware converts domain errors into the error
// envelope. Handlers never write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message, details := classify(err)
		c.JSON(status, gin.H{"success": false, "error": message, "details": details})
	}
}

func classify(err error) (int, string, any) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		details := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			details[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, "validation_failed", details
	}

	return statusFor(err), err.Error(), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, authdomain.ErrEmailNotVerified),
		errors.Is(err, businessdomain.ErrAccessDenied),
		errors.Is(err, businessdomain.ErrOwnersOnly),
		errors.Is(err, generationdomain.ErrNoSubscription),
		errors.Is(err, generationdomain.ErrModuleNotEnabled):
		return http.StatusForbidden

	case errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, businessdomain.ErrNotFound),
		errors.Is(err, businessdomain.ErrAdvisorNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, integrationdomain.ErrNotFound),
		errors.Is(err, workflowdomain.ErrArtifactNotFound),
		errors.Is(err, billingdomain.ErrNoBillingAccount),
		errors.Is(err, billingdomain.ErrNoActiveSubscription):
		return http.StatusNotFound

	case errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, authdomain.ErrAlreadyVerified),
		errors.Is(err, businessdomain.ErrAlreadyExists),
		errors.Is(err, integrationdomain.ErrAlreadyConnected):
		return http.StatusConflict

	case errors.Is(err, errTooManyRequests),
		errors.Is(err, generationdomain.ErrLimitReached),
		errors.Is(err, integrationdomain.ErrLimitReached),
		errors.Is(err, workflowdomain.ErrTemplateLimit):
		return http.StatusTooManyRequests

	case errors.Is(err, llm.ErrProviderUnavailable),
		errors.Is(err, stripe.ErrRequestFailed):
		return http.StatusBadGateway

	case errors.Is(err, errInvalidID),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, generationdomain.ErrInvalidModule),
		errors.Is(err, generationdomain.ErrInvalidRequestType),
		errors.Is(err, subscriptiondomain.ErrInvalidTier),
		errors.Is(err, integrationdomain.ErrUnknownKind),
		errors.Is(err, integrationdomain.ErrDisabled),
		errors.Is(err, integrationdomain.ErrInvalidState),
		errors.Is(err, stripe.ErrInvalidSignature),
		errors.Is(err, stripe.ErrInvalidPayload):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
