package cipher

// #region shift-pair

const alphabetSize = 26

// ShiftPair holds the two caller-supplied shift inputs. Any int is accepted;
// rules only ever see the reduced values.
type ShiftPair struct {
	Shift1 int `json:"shift1"`
	Shift2 int `json:"shift2"`
}

// Reduced returns both shifts reduced into [0,26).
func (p ShiftPair) Reduced() (s1, s2 int) {
	return mod26(p.Shift1), mod26(p.Shift2)
}

func mod26(n int) int {
	r := n % alphabetSize
	if r < 0 {
		r += alphabetSize
	}
	return r
}

// #endregion shift-pair

// #region rules

// amount is the forward shift for class k, reduced into [0,26).
func (p ShiftPair) amount(k Class) int {
	s1, s2 := p.Reduced()
	switch k {
	case LowerFirstHalf:
		return mod26(s1 * s2)
	case LowerSecondHalf:
		return mod26(-(s1 + s2))
	case UpperFirstHalf:
		return mod26(-s1)
	case UpperSecondHalf:
		return mod26(s2 * s2)
	default:
		return 0
	}
}

// Forward applies the forward rule of class k to r. The shift wraps within
// r's own case; non-letters are returned unchanged whatever k says.
func Forward(r rune, k Class, p ShiftPair) rune {
	return shiftRune(r, p.amount(k))
}

// Inverse undoes Forward for the same class and pair.
func Inverse(r rune, k Class, p ShiftPair) rune {
	return shiftRune(r, mod26(-p.amount(k)))
}

func shiftRune(r rune, n int) rune {
	switch {
	case isLower(r):
		return 'a' + rune(mod26(int(r-'a')+n))
	case isUpper(r):
		return 'A' + rune(mod26(int(r-'A')+n))
	default:
		return r
	}
}

// #endregion rules
