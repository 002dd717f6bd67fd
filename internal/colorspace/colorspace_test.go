package colorspace

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, p.Name())
		}
	}

	_, err := Lookup("display-p3")
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 5 {
		t.Fatalf("expected 5 profiles, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestProfileWhiteMapsToD50(t *testing.T) {
	for _, name := range Names() {
		p, _ := Lookup(name)
		xyz := p.RGBToXYZ(1, 1, 1)
		for i := 0; i < 3; i++ {
			if !near(xyz[i], WhiteD50[i], 1e-6) {
				t.Errorf("%s: white XYZ = %v, want %v", name, xyz, WhiteD50)
				break
			}
		}
	}
}

func TestSRGBMatchesColorful(t *testing.T) {
	p, _ := Lookup(SRGB)
	adapt := adaptationMatrix(WhiteD65, WhiteD50)

	tests := []struct {
		name    string
		r, g, b float64
	}{
		{"red", 1, 0, 0},
		{"green", 0, 1, 0},
		{"blue", 0, 0, 1},
		{"mid gray", 0.5, 0.5, 0.5},
		{"orange", 0.9, 0.45, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := colorful.Color{R: tt.r, G: tt.g, B: tt.b}
			x, y, z := c.Xyz()
			want := mulMat3Vec(adapt, Vec3{x, y, z})
			got := p.RGBToXYZ(float32(tt.r), float32(tt.g), float32(tt.b))
			for i := 0; i < 3; i++ {
				if !near(got[i], want[i], 1e-3) {
					t.Errorf("XYZ = %v, want %v", got, want)
					break
				}
			}
		})
	}
}

func TestXYZToRGBInverts(t *testing.T) {
	for _, name := range Names() {
		p, _ := Lookup(name)
		r, g, b := p.XYZToRGB(p.RGBToXYZ(0.25, 0.5, 0.75))
		if !near(float64(r), 0.25, 1e-5) || !near(float64(g), 0.5, 1e-5) || !near(float64(b), 0.75, 1e-5) {
			t.Errorf("%s: got (%v, %v, %v)", name, r, g, b)
		}
	}
}

func TestAdobeNegativeValues(t *testing.T) {
	p, _ := Lookup(AdobeRGB)
	pos := p.RGBToXYZ(0.5, 0.5, 0.5)
	neg := p.RGBToXYZ(-0.5, -0.5, -0.5)
	for i := 0; i < 3; i++ {
		if !near(pos[i], -neg[i], 1e-9) {
			t.Errorf("transfer is not odd: %v vs %v", pos, neg)
		}
	}
}

func TestLuvUV(t *testing.T) {
	u, v := LuvUV(WhiteD50)
	if !near(u, 0, 1e-9) || !near(v, 0, 1e-9) {
		t.Errorf("white u*v* = (%v, %v), want origin", u, v)
	}

	u, v = LuvUV(XYZ{})
	if u != 0 || v != 0 {
		t.Errorf("black u*v* = (%v, %v), want origin", u, v)
	}

	p, _ := Lookup(LinearRec709)
	red := p.RGBToXYZ(1, 0, 0)
	_, wu, wv := colorful.XyzToLuvWhiteRef(red[0], red[1], red[2], colorful.D50)
	u, v = LuvUV(red)
	if !near(u, 100*wu, 1e-6) || !near(v, 100*wv, 1e-6) {
		t.Errorf("red u*v* = (%v, %v), want (%v, %v)", u, v, 100*wu, 100*wv)
	}
	if u <= 0 {
		t.Errorf("red u* should be positive, got %v", u)
	}
}

func TestD50ToD65(t *testing.T) {
	got := D50ToD65(WhiteD50)
	for i := 0; i < 3; i++ {
		if !near(got[i], WhiteD65[i], 1e-3) {
			t.Errorf("D50 white adapted = %v, want %v", got, WhiteD65)
			break
		}
	}
}

func TestJzAzBzBlack(t *testing.T) {
	jz, az, bz := JzAzBz(XYZ{})
	if !near(jz, 0, 1e-12) {
		t.Errorf("black Jz = %v, want 0", jz)
	}
	if !near(az, 0, 1e-9) || !near(bz, 0, 1e-9) {
		t.Errorf("black AzBz = (%v, %v), want origin", az, bz)
	}
}

func TestAzBzHueOrder(t *testing.T) {
	p, _ := Lookup(LinearRec709)
	ra, _ := AzBz(p.RGBToXYZ(1, 0, 0))
	ga, _ := AzBz(p.RGBToXYZ(0, 1, 0))
	_, bb := AzBz(p.RGBToXYZ(0, 0, 1))
	if ra <= 0 {
		t.Errorf("red Az should be positive, got %v", ra)
	}
	if ga >= 0 {
		t.Errorf("green Az should be negative, got %v", ga)
	}
	if bb >= 0 {
		t.Errorf("blue Bz should be negative, got %v", bb)
	}
}

func TestTransformImage(t *testing.T) {
	srgb, _ := Lookup(SRGB)
	lin, _ := Lookup(LinearRec709)

	in := []float32{
		0.5, 0.25, 1, 1,
		0, 0.04, 0.8, 0.5,
	}
	out := make([]float32, len(in))
	if err := TransformImage(in, out, 2, 1, srgb, lin); err != nil {
		t.Fatalf("TransformImage failed: %v", err)
	}

	for px := 0; px < 2; px++ {
		i := 4 * px
		r, g, b := colorful.Color{R: float64(in[i]), G: float64(in[i+1]), B: float64(in[i+2])}.LinearRgb()
		if !near(float64(out[i]), r, 1e-4) || !near(float64(out[i+1]), g, 1e-4) || !near(float64(out[i+2]), b, 1e-4) {
			t.Errorf("pixel %d = %v, want (%v, %v, %v)", px, out[i:i+3], r, g, b)
		}
		if out[i+3] != in[i+3] {
			t.Errorf("pixel %d alpha = %v, want %v", px, out[i+3], in[i+3])
		}
	}
}

func TestTransformImageInPlace(t *testing.T) {
	rec709, _ := Lookup(LinearRec709)
	rec2020, _ := Lookup(LinearRec2020)

	buf := []float32{0.2, 0.4, 0.6, 1}
	if err := TransformImage(buf, buf, 1, 1, rec709, rec2020); err != nil {
		t.Fatalf("TransformImage failed: %v", err)
	}
	if err := TransformImage(buf, buf, 1, 1, rec2020, rec709); err != nil {
		t.Fatalf("TransformImage failed: %v", err)
	}
	want := []float32{0.2, 0.4, 0.6, 1}
	for i := range want {
		if !near(float64(buf[i]), float64(want[i]), 1e-5) {
			t.Errorf("round trip = %v, want %v", buf, want)
			break
		}
	}
}

func TestTransformImageErrors(t *testing.T) {
	p, _ := Lookup(SRGB)
	tests := []struct {
		name     string
		in, out  []float32
		from, to *Profile
	}{
		{"nil from", make([]float32, 4), make([]float32, 4), nil, p},
		{"nil to", make([]float32, 4), make([]float32, 4), p, nil},
		{"short input", make([]float32, 3), make([]float32, 4), p, p},
		{"short output", make([]float32, 4), make([]float32, 2), p, p},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := TransformImage(tt.in, tt.out, 1, 1, tt.from, tt.to); err == nil {
				t.Error("expected error")
			}
		})
	}
}
