package colorspace

import "github.com/lucasb-eyer/go-colorful"

// Vec3 is a 3-component column vector.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// XYZ is a CIE XYZ tristimulus value with Y=1 for the reference white.
type XYZ = Vec3

// Reference whites normalized to Y=1. WhiteD50 is the white of the profile
// connection space.
var (
	WhiteD50 = Vec3(colorful.D50)
	WhiteD65 = Vec3(colorful.D65)
)

// bradford is the Bradford cone response matrix.
var bradford = Mat3{
	{0.8951, 0.2664, -0.1614},
	{-0.7502, 1.7135, 0.0367},
	{0.0389, -0.0685, 1.0296},
}

var invBradford = mustInvert(bradford)

// d50ToD65 is the fixed Bradford adaptation from the D50 white to D65.
var d50ToD65 = Mat3{
	{0.9555766, -0.0230393, 0.0631636},
	{-0.0282895, 1.0099416, 0.0210077},
	{0.0122982, -0.0204830, 1.3299098},
}

func mulMat3(a, b Mat3) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return m
}

func mulMat3Vec(m Mat3, v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// invertMat3 returns the inverse of m. ok is false for a singular matrix.
func invertMat3(m Mat3) (inv Mat3, ok bool) {
	c00 := m[1][1]*m[2][2] - m[1][2]*m[2][1]
	c01 := m[1][2]*m[2][0] - m[1][0]*m[2][2]
	c02 := m[1][0]*m[2][1] - m[1][1]*m[2][0]
	det := m[0][0]*c00 + m[0][1]*c01 + m[0][2]*c02
	if det == 0 {
		return Mat3{}, false
	}
	d := 1 / det
	inv = Mat3{
		{c00 * d, (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * d, (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * d},
		{c01 * d, (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * d, (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * d},
		{c02 * d, (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * d, (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * d},
	}
	return inv, true
}

func mustInvert(m Mat3) Mat3 {
	inv, ok := invertMat3(m)
	if !ok {
		panic("colorspace: singular matrix")
	}
	return inv
}

// adaptationMatrix builds the Bradford transform that maps the src white onto
// the dst white.
func adaptationMatrix(src, dst Vec3) Mat3 {
	s := mulMat3Vec(bradford, src)
	d := mulMat3Vec(bradford, dst)
	scale := Mat3{
		{d[0] / s[0], 0, 0},
		{0, d[1] / s[1], 0},
		{0, 0, d[2] / s[2]},
	}
	return mulMat3(invBradford, mulMat3(scale, bradford))
}

// xyToXYZ lifts an xy chromaticity to XYZ with Y=1.
func xyToXYZ(x, y float64) Vec3 {
	return Vec3{x / y, 1, (1 - x - y) / y}
}

// primariesMatrix computes the linear RGB -> XYZ matrix for the given
// primaries, relative to white. Columns are the XYZ of each primary scaled
// so that RGB (1,1,1) maps onto white.
func primariesMatrix(r, g, b [2]float64, white Vec3) (Mat3, bool) {
	pr, pg, pb := xyToXYZ(r[0], r[1]), xyToXYZ(g[0], g[1]), xyToXYZ(b[0], b[1])
	p := Mat3{
		{pr[0], pg[0], pb[0]},
		{pr[1], pg[1], pb[1]},
		{pr[2], pg[2], pb[2]},
	}
	inv, ok := invertMat3(p)
	if !ok {
		return Mat3{}, false
	}
	s := mulMat3Vec(inv, white)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p[i][j] *= s[j]
		}
	}
	return p, true
}
