package detdraw

import "math"

// FixedQ is the number of fractional bits of the Q24.8 geometry domain.
const FixedQ = 8

// fixedScale is 2^FixedQ.
const fixedScale = 1 << FixedQ

// RoundPixel rounds v half away from zero to an int32.
// ok is false when v is NaN or the result leaves the int32 range.
func RoundPixel(v float64) (px int32, ok bool) {
	r := math.Round(v)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

// ToQ24_8 converts v to Q24.8: round_half_away_from_zero(v*256).
// ok is false when the raw value does not fit in an int32.
func ToQ24_8(v float64) (raw int32, ok bool) {
	return RoundPixel(v * fixedScale)
}

// FromQ24_8 converts a raw Q24.8 value back to float64. The conversion is
// exact.
func FromQ24_8(raw int32) float64 {
	return float64(raw) / fixedScale
}
