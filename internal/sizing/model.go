package sizing

import "math"

// Connections picks the number of concurrent ranged GETs to use for a file
// of sizeBytes given an estimated connection speed in Mbps. The result is
// always within [MinConnections, MaxConnections].
//
// The model is piecewise-logarithmic in file size, then scaled by a
// sigmoid function of connection speed, then nudged by one of three
// special-case adjustments (a cap for small files on fast links, a
// multiplier for each of two large-file cases) for size/speed combinations
// that the base curve handles poorly on its own.
func Connections(sizeBytes int64, connectionSpeedMbps float64) int {
	sizeMB := float64(sizeBytes) / OneMB

	baseConn := baseConnections(sizeMB)
	speedFactor := speedFactor(connectionSpeedMbps)
	adjusted := baseConn * speedFactor

	switch {
	case sizeMB < 5 && connectionSpeedMbps > 100:
		adjusted = math.Min(adjusted, 4+sizeMB/2)
	case sizeMB > 1000 && connectionSpeedMbps < 20:
		adjusted = math.Min(adjusted*1.2, MaxConnections)
	case sizeMB > 5000 && connectionSpeedMbps > 300:
		adjusted = math.Min(adjusted*1.1, MaxConnections)
	}

	final := int(math.Round(adjusted))
	if final < MinConnections {
		return MinConnections
	}
	if final > MaxConnections {
		return MaxConnections
	}

	return final
}

// baseConnections implements base_conn = 2 + α * log₁₀(size_mb + 1), with α
// and the curve shape varying by size bracket.
func baseConnections(sizeMB float64) float64 {
	switch {
	case sizeMB < 1:
		return 2
	case sizeMB < 10:
		return 2 + 1.2*math.Log10(sizeMB+1)
	case sizeMB < 50:
		return 4 + 2.0*math.Log10(sizeMB/10+0.5)
	case sizeMB < 100:
		return 6 + 2.5*math.Log10(sizeMB/50+0.7)
	case sizeMB < 500:
		return 8 + 3.0*math.Log10(sizeMB/100+0.8)
	case sizeMB < 1000:
		return 12 + 3.5*math.Log10(sizeMB/500+0.85)
	case sizeMB < 5000:
		return 16 + 4.0*math.Log10(sizeMB/1000+0.9)
	case sizeMB < 10000:
		return 18 + 4.5*math.Log10(sizeMB/5000+0.95)
	default:
		return 20 + 4.0*(1-math.Exp(-sizeMB/20000))
	}
}

// speedFactor implements speed_factor = 0.8 + 0.7 * sigmoid(speed), with
// speed capped at 500 Mbps, and a flat 0.8 for links below 10 Mbps.
func speedFactor(speedMbps float64) float64 {
	if speedMbps < 10 {
		return 0.8
	}

	clamped := math.Min(speedMbps, 500)
	sigmoid := 1 / (1 + math.Exp(-0.015*(clamped-100)))

	return 0.8 + 0.7*sigmoid
}
