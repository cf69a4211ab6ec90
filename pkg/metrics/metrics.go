package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "b2b", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "b2b", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	BookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "b2b", Name: "bookings_total", Help: "Booking state transitions by resulting status."},
		[]string{"status"},
	)
	WalletOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "b2b", Name: "wallet_operations_total", Help: "Wallet mutations by type and outcome."},
		[]string{"type", "outcome"},
	)
	OTPSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "b2b", Name: "otp_sent_total", Help: "OTP codes issued by purpose."},
		[]string{"purpose"},
	)
	SupplierRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "b2b",
			Name:      "supplier_request_duration_seconds",
			Help:      "Latency of hotel supplier API calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "outcome"},
	)
)

var registerOnce sync.Once

// RegisterCollectors registers every portal collector; repeated calls are ignored.
func RegisterCollectors(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RateLimitAllowed)
		reg.MustRegister(RateLimitRejected)
		reg.MustRegister(BookingsTotal)
		reg.MustRegister(WalletOperations)
		reg.MustRegister(OTPSent)
		reg.MustRegister(SupplierRequestDuration)
	})
}
