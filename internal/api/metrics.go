package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracysmatch_auth_attempts_total",
		Help: "Auth form submissions by action and outcome.",
	}, []string{"action", "outcome"})

	gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracysmatch_role_gate_total",
		Help: "Role gate decisions by required role and result.",
	}, []string{"role", "result"})

	photoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracysmatch_photo_uploads_total",
		Help: "Uploaded photo files by outcome.",
	}, []string{"outcome"})
)
