package intermediate

import "github.com/Bajtazar/koda/coder"

// asymmetric reports whether c is an asymmetric coder (a tANS table
// coder being the only kind in this module). Coders that don't
// implement coder.Asymmetric are symmetric by definition.
func asymmetric(c any) bool {
	a, ok := c.(coder.Asymmetric)
	return ok && a.Asymmetric()
}

// compatibleFields rejects mixing an asymmetric field coder (tANS) with
// a symmetric one: tANS's state only resolves once its whole stream is
// decoded back to front, which a symmetric coder's bit-for-bit
// interleaved stream can't tolerate. All three fields must be uniformly
// asymmetric or uniformly symmetric.
func compatibleFields(cs ...any) bool {
	var sawAsym, sawSym bool
	for _, c := range cs {
		if asymmetric(c) {
			sawAsym = true
		} else {
			sawSym = true
		}
	}
	return !(sawAsym && sawSym)
}
