package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// LuvUV projects XYZ(D50) onto the CIE 1976 u*v* plane using the D50 white.
//
// The conversion goes through xyY. L* is on the 0-100 scale, so u* and v*
// carry the conventional CIELUV magnitudes.
func LuvUV(xyz XYZ) (u, v float64) {
	x, y, lum := colorful.XyzToXyyWhiteRef(xyz[0], xyz[1], xyz[2], colorful.D50)
	wx, wy, _ := colorful.XyzToXyyWhiteRef(WhiteD50[0], WhiteD50[1], WhiteD50[2], colorful.D50)

	l := luvLightness(lum)
	up, vp := xyToUV(x, y)
	un, vn := xyToUV(wx, wy)
	return 13 * l * (up - un), 13 * l * (vp - vn)
}

// luvLightness returns L* for a relative luminance with Y=1 at white.
func luvLightness(y float64) float64 {
	const eps = (6.0 / 29.0) * (6.0 / 29.0) * (6.0 / 29.0)
	const kappa = (29.0 / 3.0) * (29.0 / 3.0) * (29.0 / 3.0)
	if y <= eps {
		return kappa * y
	}
	return 116*math.Cbrt(y) - 16
}

func xyToUV(x, y float64) (u, v float64) {
	d := -2*x + 12*y + 3
	return 4 * x / d, 9 * y / d
}

// D50ToD65 adapts XYZ from the D50 white to the D65 white using a fixed
// Bradford matrix.
func D50ToD65(xyz XYZ) XYZ {
	return mulMat3Vec(d50ToD65, xyz)
}

// JzAzBz constants from Safdar et al. (2017).
const (
	jzB  = 1.15
	jzG  = 0.66
	jzC1 = 3424.0 / 4096.0
	jzC2 = 2413.0 / 128.0
	jzC3 = 2392.0 / 128.0
	jzN  = 2610.0 / 16384.0
	jzP  = 1.7 * 2523.0 / 32.0
	jzD  = -0.56
	jzD0 = 1.6295499532821566e-11
)

var (
	jzXYZToLMS = Mat3{
		{0.41478972, 0.579999, 0.0146480},
		{-0.2015100, 1.120649, 0.0531008},
		{-0.0166008, 0.264800, 0.6684799},
	}
	jzLMSToIab = Mat3{
		{0.5, 0.5, 0},
		{3.524000, -4.066708, 0.542708},
		{0.199076, 1.096799, -1.295875},
	}
)

// JzAzBz converts XYZ relative to the D65 white into JzAzBz.
func JzAzBz(xyz XYZ) (jz, az, bz float64) {
	xp := jzB*xyz[0] - (jzB-1)*xyz[2]
	yp := jzG*xyz[1] - (jzG-1)*xyz[0]
	lms := mulMat3Vec(jzXYZToLMS, Vec3{xp, yp, xyz[2]})
	for i := range lms {
		t := math.Pow(math.Max(lms[i]/10000, 0), jzN)
		lms[i] = math.Pow((jzC1+jzC2*t)/(1+jzC3*t), jzP)
	}
	iab := mulMat3Vec(jzLMSToIab, lms)
	jz = (1+jzD)*iab[0]/(1+jzD*iab[0]) - jzD0
	return jz, iab[1], iab[2]
}

// AzBz returns the Az/Bz chromaticity of XYZ(D50).
func AzBz(xyz XYZ) (az, bz float64) {
	_, az, bz = JzAzBz(D50ToD65(xyz))
	return az, bz
}
