package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Synthesis metrics
	synthesisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_gateway_synthesis_requests_total",
		Help: "Total number of synthesis requests",
	}, []string{"provider", "status"})

	synthesisLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tts_gateway_synthesis_latency_seconds",
		Help:    "Synthesis latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	}, []string{"provider"})

	synthesisAudioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_gateway_audio_bytes_total",
		Help: "Total audio bytes returned to callers",
	}, []string{"provider"})

	// Token cache metrics
	tokenRenewals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_gateway_token_renewals_total",
		Help: "Total number of upstream token issuance calls",
	}, []string{"status"})

	tokenCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_gateway_token_cache_hits_total",
		Help: "Total number of requests served from the cached token",
	})

	// Voice listing metrics
	voiceListRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_gateway_voice_list_requests_total",
		Help: "Total number of voice catalog requests",
	}, []string{"status"})

	// HTTP metrics
	inflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tts_gateway_inflight_requests",
		Help: "Number of HTTP requests currently being served",
	})
)

// RecordSynthesis records one completed synthesis attempt
func RecordSynthesis(provider string, start time.Time, audioBytes int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	synthesisRequests.WithLabelValues(provider, status).Inc()
	synthesisLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if audioBytes > 0 {
		synthesisAudioBytes.WithLabelValues(provider).Add(float64(audioBytes))
	}
}

// RecordTokenRenewal records one upstream token issuance call
func RecordTokenRenewal(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	tokenRenewals.WithLabelValues(status).Inc()
}

// RecordTokenCacheHit records a request served from the cached token
func RecordTokenCacheHit() {
	tokenCacheHits.Inc()
}

// RecordVoiceList records one voice catalog request
func RecordVoiceList(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	voiceListRequests.WithLabelValues(status).Inc()
}

// RequestStarted marks an HTTP request as in flight
func RequestStarted() {
	inflightRequests.Inc()
}

// RequestFinished marks an HTTP request as completed
func RequestFinished() {
	inflightRequests.Dec()
}
