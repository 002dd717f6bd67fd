package colorspace

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownProfile is returned by Lookup for a name that is not registered.
var ErrUnknownProfile = errors.New("unknown color profile")

// transfer converts an encoded RGB triple to linear light or back.
type transfer func(r, g, b float64) (float64, float64, float64)

// Profile is a matrix RGB color space bound to the D50 profile connection
// space.
//
// RGBToXYZ decodes the transfer curve (if any) and applies the profile
// matrix. XYZToRGB is the exact inverse. Values outside [0,1] are passed
// through unclamped.
type Profile struct {
	name    string
	toXYZ   Mat3
	fromXYZ Mat3
	decode  transfer
	encode  transfer
}

// Name returns the registered profile name.
func (p *Profile) Name() string { return p.name }

func (p *Profile) String() string { return p.name }

// Linear reports whether the profile has no transfer curve.
func (p *Profile) Linear() bool { return p.decode == nil }

// Matrix returns the linear RGB to XYZ(D50) matrix.
func (p *Profile) Matrix() Mat3 { return p.toXYZ }

// RGBToXYZ converts an encoded RGB triple to XYZ relative to the D50 white.
func (p *Profile) RGBToXYZ(r, g, b float32) XYZ {
	lr, lg, lb := float64(r), float64(g), float64(b)
	if p.decode != nil {
		lr, lg, lb = p.decode(lr, lg, lb)
	}
	return mulMat3Vec(p.toXYZ, Vec3{lr, lg, lb})
}

// XYZToRGB converts XYZ(D50) to an encoded RGB triple in this profile.
func (p *Profile) XYZToRGB(xyz XYZ) (r, g, b float32) {
	v := mulMat3Vec(p.fromXYZ, xyz)
	if p.encode != nil {
		v[0], v[1], v[2] = p.encode(v[0], v[1], v[2])
	}
	return float32(v[0]), float32(v[1]), float32(v[2])
}

// newProfile builds a profile from xy primaries and a native white. The
// matrix is Bradford-adapted from the native white to D50.
func newProfile(name string, r, g, b [2]float64, white Vec3, decode, encode transfer) *Profile {
	m, ok := primariesMatrix(r, g, b, white)
	if !ok {
		panic(fmt.Sprintf("colorspace: degenerate primaries for %s", name))
	}
	if white != WhiteD50 {
		m = mulMat3(adaptationMatrix(white, WhiteD50), m)
	}
	return &Profile{
		name:    name,
		toXYZ:   m,
		fromXYZ: mustInvert(m),
		decode:  decode,
		encode:  encode,
	}
}

func srgbDecode(r, g, b float64) (float64, float64, float64) {
	return colorful.Color{R: r, G: g, B: b}.LinearRgb()
}

func srgbEncode(r, g, b float64) (float64, float64, float64) {
	c := colorful.LinearRgb(r, g, b)
	return c.R, c.G, c.B
}

// adobeGamma is the Adobe RGB (1998) exponent, 2 + 51/256.
const adobeGamma = 563.0 / 256.0

func signedPow(v, e float64) float64 {
	if v < 0 {
		return -math.Pow(-v, e)
	}
	return math.Pow(v, e)
}

func adobeDecode(r, g, b float64) (float64, float64, float64) {
	return signedPow(r, adobeGamma), signedPow(g, adobeGamma), signedPow(b, adobeGamma)
}

func adobeEncode(r, g, b float64) (float64, float64, float64) {
	return signedPow(r, 1/adobeGamma), signedPow(g, 1/adobeGamma), signedPow(b, 1/adobeGamma)
}

// Registered profile names.
const (
	LinearRec709   = "linear-rec709"
	SRGB           = "srgb"
	LinearRec2020  = "linear-rec2020"
	AdobeRGB       = "adobe-rgb"
	LinearProPhoto = "linear-prophoto"
)

var (
	rec709Primaries   = [3][2]float64{{0.64, 0.33}, {0.30, 0.60}, {0.15, 0.06}}
	rec2020Primaries  = [3][2]float64{{0.708, 0.292}, {0.170, 0.797}, {0.131, 0.046}}
	adobePrimaries    = [3][2]float64{{0.64, 0.33}, {0.21, 0.71}, {0.15, 0.06}}
	prophotoPrimaries = [3][2]float64{{0.7347, 0.2653}, {0.1596, 0.8404}, {0.0366, 0.0001}}
)

var profiles = map[string]*Profile{
	LinearRec709:   newProfile(LinearRec709, rec709Primaries[0], rec709Primaries[1], rec709Primaries[2], WhiteD65, nil, nil),
	SRGB:           newProfile(SRGB, rec709Primaries[0], rec709Primaries[1], rec709Primaries[2], WhiteD65, srgbDecode, srgbEncode),
	LinearRec2020:  newProfile(LinearRec2020, rec2020Primaries[0], rec2020Primaries[1], rec2020Primaries[2], WhiteD65, nil, nil),
	AdobeRGB:       newProfile(AdobeRGB, adobePrimaries[0], adobePrimaries[1], adobePrimaries[2], WhiteD65, adobeDecode, adobeEncode),
	LinearProPhoto: newProfile(LinearProPhoto, prophotoPrimaries[0], prophotoPrimaries[1], prophotoPrimaries[2], WhiteD50, nil, nil),
}

// Lookup returns the registered profile with the given name.
//
// Returns an error wrapping ErrUnknownProfile if the name is not registered.
func Lookup(name string) (*Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Names returns the registered profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
