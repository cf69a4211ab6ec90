package handlers

import (
	"errors"
	"net/http"

	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/otp"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

type errorStatus struct {
	err    error
	status int
}

var errorStatuses = []errorStatus{
	{companies.ErrNotFound, http.StatusNotFound},
	{employees.ErrNotFound, http.StatusNotFound},
	{admins.ErrNotFound, http.StatusNotFound},
	{bookings.ErrNotFound, http.StatusNotFound},
	{wallet.ErrNotFound, http.StatusNotFound},
	{markups.ErrNotFound, http.StatusNotFound},
	{bookings.ErrVoucherUnavailable, http.StatusNotFound},

	{companies.ErrConflict, http.StatusConflict},
	{employees.ErrConflict, http.StatusConflict},
	{admins.ErrConflict, http.StatusConflict},
	{bookings.ErrConflict, http.StatusConflict},
	{bookings.ErrInvalidState, http.StatusConflict},
	{wallet.ErrNonZeroBalance, http.StatusConflict},

	{companies.ErrInvalidCredentials, http.StatusUnauthorized},
	{employees.ErrInvalidCredentials, http.StatusUnauthorized},
	{admins.ErrInvalidCredentials, http.StatusUnauthorized},
	{otp.ErrInvalidOTP, http.StatusUnauthorized},

	{companies.ErrBlocked, http.StatusForbidden},
	{companies.ErrNotVerified, http.StatusForbidden},
	{employees.ErrDisabled, http.StatusForbidden},
	{bookings.ErrNoCompany, http.StatusForbidden},

	{wallet.ErrInsufficientFunds, http.StatusPaymentRequired},

	{otp.ErrExpired, http.StatusGone},
	{hotels.ErrSearchExpired, http.StatusGone},

	{otp.ErrTooManyAttempts, http.StatusTooManyRequests},
	{otp.ErrCooldown, http.StatusTooManyRequests},

	{companies.ErrInvalidPhone, http.StatusBadRequest},
	{companies.ErrInvalidStatus, http.StatusBadRequest},
	{employees.ErrInvalidPhone, http.StatusBadRequest},
	{otp.ErrInvalidPurpose, http.StatusBadRequest},
	{wallet.ErrInvalidAmount, http.StatusBadRequest},
	{markups.ErrInvalidType, http.StatusBadRequest},
	{markups.ErrPercentageRange, http.StatusBadRequest},
	{markups.ErrNegativeFixed, http.StatusBadRequest},
	{markups.ErrHotelRequired, http.StatusBadRequest},
	{hotels.ErrInvalidSearch, http.StatusBadRequest},
	{bookings.ErrUnsupportedPayment, http.StatusBadRequest},
	{bookings.ErrInvalidGuests, http.StatusBadRequest},

	{supplier.ErrUnavailable, http.StatusBadGateway},
}

// statusFor maps a domain error to its HTTP status; unknown errors are 500.
func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": message}. Internal errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
	case http.StatusBadGateway:
		logger.Warnf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "hotel supplier request failed", "details": err.Error()})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
