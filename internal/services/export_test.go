package services

import "github.com/prometheus/client_golang/prometheus"

// AccessCounter exposes the ownership decision counter to tests.
func AccessCounter(resource, decision string) prometheus.Counter {
	return accessDecisions.WithLabelValues(resource, decision)
}
