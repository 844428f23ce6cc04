package engine

import (
	"math/big"
	"strconv"
)

// DefaultPrecision is the number of decimal places aggregates are rounded to.
const DefaultPrecision = 2

// RoundRatio returns num/den rounded half away from zero to precision
// decimal places. The division and rounding are done on exact rationals,
// so 107/40 (2.675) rounds to 2.68 even though the float64 quotient is
// 2.67499999....
// A negative precision returns the plain float quotient.
func RoundRatio(num float64, den int, precision int) float64 {
	if den == 0 {
		return 0
	}
	r := new(big.Rat)
	if precision < 0 || r.SetFloat64(num) == nil {
		return num / float64(den)
	}
	f, _ := RoundRat(r.Quo(r, new(big.Rat).SetInt64(int64(den))), precision).Float64()
	return f
}

// RoundRat returns r rounded half away from zero to precision decimal
// places, as an exact rational. precision must not be negative.
func RoundRat(r *big.Rat, precision int) *big.Rat {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(scale))

	q, m := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	// |m| * 2 >= denom → move q one step away from zero
	m.Abs(m).Lsh(m, 1)
	if m.Cmp(scaled.Denom()) >= 0 {
		if scaled.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return new(big.Rat).SetFrac(q, scale)
}

// FormatValue prints v with exactly precision decimals ("15.00").
// A negative precision prints the shortest representation.
func FormatValue(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
