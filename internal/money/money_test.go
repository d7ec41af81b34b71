package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"no rounding needed", 10.25, 10.25},
		{"round down", 10.254, 10.25},
		{"round up", 10.255, 10.26},
		{"half away from zero", 2.675, 2.68},
		{"negative half away from zero", -2.675, -2.68},
		{"float artifact", 0.1 + 0.2, 0.3},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSumWithin(t *testing.T) {
	tests := []struct {
		name  string
		sum   float64
		total float64
		want  bool
	}{
		{"exact", 30, 30, true},
		{"within tolerance under", 29.995, 30, true},
		{"at tolerance", 29.99, 30, true},
		{"beyond tolerance", 29.98, 30, false},
		{"within tolerance over", 30.005, 30, true},
		{"accumulated float error", 0.1 + 0.2, 0.3, true},
		{"way off", 20, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SumWithin(tt.sum, tt.total); got != tt.want {
				t.Errorf("SumWithin(%v, %v) = %v, want %v", tt.sum, tt.total, got, tt.want)
			}
		})
	}
}
