package radio

import (
	"math"
	"time"
)

// HealthStatus buckets an average RF score.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthCritical HealthStatus = "CRITICAL"
)

// StabilityIndex buckets the standard deviation of recent SNR samples.
type StabilityIndex string

const (
	StabilityStable       StabilityIndex = "STABLE"
	StabilityUnstable     StabilityIndex = "UNSTABLE"
	StabilityVeryUnstable StabilityIndex = "VERY_UNSTABLE"
	StabilityUnknown      StabilityIndex = "UNKNOWN"
)

// ConnectivityStatus classifies the gap since a device or gateway was last seen.
type ConnectivityStatus string

const (
	ConnectivityOnline  ConnectivityStatus = "ONLINE"
	ConnectivityOffline ConnectivityStatus = "OFFLINE"
	ConnectivityUnknown ConnectivityStatus = "UNKNOWN"
)

// HealthFromScore classifies an average RF score.
func HealthFromScore(avgScore float64) HealthStatus {
	switch {
	case avgScore >= 80:
		return HealthHealthy
	case avgScore >= 50:
		return HealthDegraded
	default:
		return HealthCritical
	}
}

// Stability classifies the population standard deviation of the given
// SNR samples. An empty sample yields StabilityUnknown.
func Stability(snrSamples []float64) StabilityIndex {
	if len(snrSamples) == 0 {
		return StabilityUnknown
	}

	stddev := StdDev(snrSamples)
	switch {
	case stddev <= 2:
		return StabilityStable
	case stddev <= 5:
		return StabilityUnstable
	default:
		return StabilityVeryUnstable
	}
}

// StdDev returns the population standard deviation of the samples.
func StdDev(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return math.Sqrt(variance)
}

// Connectivity classifies a last-seen timestamp against the offline
// threshold. A nil timestamp yields ConnectivityUnknown.
func Connectivity(lastSeen *time.Time, now time.Time, offlineThreshold time.Duration) ConnectivityStatus {
	if lastSeen == nil {
		return ConnectivityUnknown
	}

	if now.Sub(*lastSeen) < offlineThreshold {
		return ConnectivityOnline
	}
	return ConnectivityOffline
}
