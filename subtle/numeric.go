package subtle

import (
	"math/big"
)

// numradixEncode converts a numeral string in base radix to an integer,
// most significant numeral first. This is the NUM function of NIST SP 800-38G.
func numradixEncode(numerals []uint16, radix int) *big.Int {
	result := big.NewInt(0)
	radixBig := big.NewInt(int64(radix))

	for _, digit := range numerals {
		result.Mul(result, radixBig)
		result.Add(result, big.NewInt(int64(digit)))
	}

	return result
}

// numradixDecode converts an integer to a numeral string of the given length
// in base radix, most significant numeral first. This is the STR function of
// NIST SP 800-38G.
func numradixDecode(val *big.Int, radix int, length int) []uint16 {
	result := make([]uint16, length)
	radixBig := big.NewInt(int64(radix))
	temp := new(big.Int).Set(val)

	for i := length - 1; i >= 0; i-- {
		var remainder big.Int
		temp.DivMod(temp, radixBig, &remainder)
		result[i] = uint16(remainder.Int64())
	}

	return result
}

// radixPow returns radix**n as a big integer.
func radixPow(radix, n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(n)), nil)
}
