package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrik domain. Metrik HTTP ada di middleware.
var (
	// WorkflowTransitions menghitung transisi status RPS yang berhasil di-commit.
	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_workflow_transitions_total",
			Help: "Jumlah transisi status RPS",
		},
		[]string{"action", "to"},
	)

	// Assignments menghitung hasil alokasi dosen per dosen.
	Assignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_assignments_total",
			Help: "Jumlah penugasan dosen menurut hasil (created, reactivated, warning)",
		},
		[]string{"outcome"},
	)

	// NotificationsFailed menghitung pengiriman notifikasi yang gagal per sink.
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_notifications_failed_total",
			Help: "Jumlah notifikasi yang gagal dikirim",
		},
		[]string{"sink"},
	)
)
