package detdraw

import (
	"math"
	"testing"
)

func TestRoundPixelHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{0.5, 1},
		{1.5, 2},
		{2.5, 3},
		{-0.5, -1},
		{-2.5, -3},
		{2.49, 2},
		{-2.49, -2},
		{10, 10},
	}
	for _, tt := range tests {
		got, ok := RoundPixel(tt.in)
		if !ok || got != tt.want {
			t.Errorf("RoundPixel(%v) = %d, %v; want %d", tt.in, got, ok, tt.want)
		}
	}
}

func TestRoundPixelRange(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.MaxInt32 + 1.0, math.MinInt32 - 1.0} {
		if _, ok := RoundPixel(v); ok {
			t.Errorf("RoundPixel(%v) ok = true, want false", v)
		}
	}
	if px, ok := RoundPixel(math.MaxInt32); !ok || px != math.MaxInt32 {
		t.Errorf("RoundPixel(MaxInt32) = %d, %v", px, ok)
	}
}

func TestQ24_8PrecisionBound(t *testing.T) {
	for _, v := range []float64{0, 1.0 / 3, 10.1, -7.777, 1234.5678, 0.001953125, -0.001953125} {
		raw, ok := ToQ24_8(v)
		if !ok {
			t.Fatalf("ToQ24_8(%v) not ok", v)
		}
		if diff := math.Abs(FromQ24_8(raw) - v); diff > 1.0/256 {
			t.Errorf("round trip of %v off by %v", v, diff)
		}
	}
	if raw, _ := ToQ24_8(1.5); raw != 384 {
		t.Errorf("ToQ24_8(1.5) = %d, want 384", raw)
	}
	if _, ok := ToQ24_8(1 << 24); ok {
		t.Error("ToQ24_8(2^24) should overflow")
	}
}
