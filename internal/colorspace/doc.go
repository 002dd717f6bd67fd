// Package colorspace converts RGB pixels between working profiles and the
// CIE XYZ profile connection space used by the scopes.
//
// A Profile describes a matrix RGB space: its primaries, its white point and
// its transfer function. Every profile converts to and from XYZ relative to
// the D50 illuminant (the ICC profile connection space). Profiles whose native
// white is D65 are adapted to D50 with the Bradford transform when the profile
// is built, so a neutral RGB triple always lands on the D50 white.
//
// # Profiles
//
// The built-in profiles are looked up by name:
//   - "linear-rec709": Rec.709 primaries, linear
//   - "srgb": Rec.709 primaries, sRGB transfer curve
//   - "linear-rec2020": Rec.2020 primaries, linear
//   - "adobe-rgb": Adobe RGB (1998) primaries, gamma 563/256
//   - "linear-prophoto": ProPhoto (ROMM) primaries, D50 white, linear
//
// # Chromaticity
//
// Two 2-D chromaticity projections are provided for the vectorscope:
// CIE 1976 u*v* (via xyY, D50 white) and the Az/Bz plane of JzAzBz (after
// adapting XYZ from D50 to D65).
//
// # Thread Safety
//
// Profiles are immutable after construction and safe for concurrent use.
package colorspace
