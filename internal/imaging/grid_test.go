package imaging

import (
	"image"
	"testing"
)

func TestNewGrid_Validation(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		dataLen    int
		wantError  bool
	}{
		{"valid", 4, 5, 20, false},
		{"short_data", 4, 5, 19, true},
		{"long_data", 4, 5, 21, true},
		{"zero_rows", 0, 5, 0, true},
		{"negative_cols", 4, -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.rows, tt.cols, make([]float64, tt.dataLen))
			if (err != nil) != tt.wantError {
				t.Errorf("NewGrid(%d, %d, %d values) error = %v, wantError %v",
					tt.rows, tt.cols, tt.dataLen, err, tt.wantError)
			}
		})
	}
}

func TestGrid_At(t *testing.T) {
	g, err := NewGrid(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	if got := g.At(0, 2); got != 3 {
		t.Errorf("At(0,2) = %v, want 3", got)
	}
	if got := g.At(1, 0); got != 4 {
		t.Errorf("At(1,0) = %v, want 4", got)
	}
}

func TestGrid_Inside(t *testing.T) {
	g, err := NewGrid(2, 3, make([]float64, 6))
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	inside := [][2]int{{0, 0}, {1, 2}}
	outside := [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 3}}

	for _, p := range inside {
		if !g.Inside(p[0], p[1]) {
			t.Errorf("Inside(%d, %d) = false, want true", p[0], p[1])
		}
	}
	for _, p := range outside {
		if g.Inside(p[0], p[1]) {
			t.Errorf("Inside(%d, %d) = true, want false", p[0], p[1])
		}
	}
}

func TestSnapshot_Dimensions(t *testing.T) {
	data := make([]float64, 64*48)
	for i := range data {
		data[i] = float64(i % 512)
	}
	g, err := NewGrid(48, 64, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	t.Run("unscaled", func(t *testing.T) {
		img := Snapshot(g, nil, 512, 256, 0)
		want := image.Rect(0, 0, 64, 48)
		if img.Bounds() != want {
			t.Errorf("bounds = %v, want %v", img.Bounds(), want)
		}
	})

	t.Run("scaled_down", func(t *testing.T) {
		img := Snapshot(g, nil, 512, 256, 32)
		if w := img.Bounds().Dx(); w != 32 {
			t.Errorf("longer edge = %d, want 32", w)
		}
	})
}

func TestSnapshot_BurnsCircle(t *testing.T) {
	g, err := NewGrid(32, 32, make([]float64, 32*32))
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	circ := Circle{CenterRow: 16, CenterCol: 16, Radius: 8}
	img := Snapshot(g, []Circle{circ}, 100, 50, 0)

	// A pixel near the circle boundary should be white, the center
	// untouched. Pixel (row 16, col 23) has its center 7.52px from the
	// ROI center, within half a pixel of the radius.
	r, _, _, _ := img.At(23, 16).RGBA()
	if r == 0 {
		t.Error("boundary pixel not burned in")
	}
	r, _, _, _ = img.At(16, 16).RGBA()
	if r != 0 {
		t.Error("center pixel should stay black for an all-zero grid")
	}
}

func TestApplyWindowScaling(t *testing.T) {
	tests := []struct {
		name      string
		intensity float64
		want      float64
	}{
		{"below_window", -1000, 0},
		{"above_window", 3000, 1},
		{"at_center", 499.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyWindowScaling(tt.intensity, 500, 1000)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("applyWindowScaling(%v) = %v, want %v", tt.intensity, got, tt.want)
			}
		})
	}
}
