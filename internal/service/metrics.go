package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeBooked     = "booked"
	outcomeInvalid    = "invalid"
	outcomeNotFound   = "not_found"
	outcomeTaken      = "already_reserved"
	outcomeConcurrent = "concurrent_modification"
	outcomeError      = "error"
)

var (
	sessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of sessions published by coaches",
		},
	)
	sessionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_conflicts_total",
			Help: "Total number of session creations rejected for overlapping an existing session",
		},
	)
	sessionReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)
)
