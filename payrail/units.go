package payrail

import (
	"fmt"
	"math/big"
	"strings"
)

// WeiDecimals is the number of decimal places between ether and wei.
const WeiDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(WeiDecimals), nil)

// Ether returns n ether in wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), weiPerEther)
}

// ParseEther converts a decimal ether string such as "0.065" to wei.
// At most 18 fractional digits are accepted; negative values are rejected.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidEther)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > WeiDecimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidEther, s, WeiDecimals)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEther, s)
	}

	wei, ok := new(big.Int).SetString(whole+frac+strings.Repeat("0", WeiDecimals-len(frac)), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEther, s)
	}
	return wei, nil
}

// MustParseEther is ParseEther for constants; it panics on malformed input.
func MustParseEther(s string) *big.Int {
	wei, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return wei
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	q, r := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	if r.Sign() == 0 {
		return sign + q.String()
	}
	digits := r.String()
	frac := strings.Repeat("0", WeiDecimals-len(digits)) + digits
	return sign + q.String() + "." + strings.TrimRight(frac, "0")
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
