package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatChainID renders a chain ID the way wallets report it from
// eth_chainId: lower-case hex with a 0x prefix and no leading zeros.
func FormatChainID(id int64) string {
	return "0x" + big.NewInt(id).Text(16)
}

// ParseChainID accepts a 0x-prefixed hex chain ID (any case, leading zeros
// allowed) or a plain decimal one.
func ParseChainID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty chain id")
	}

	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = n.SetString(s[2:], 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok || n.Sign() < 0 || !n.IsInt64() {
		return 0, fmt.Errorf("invalid chain id %q", s)
	}
	return n.Int64(), nil
}

// SameChainID reports whether two wallet-reported chain IDs name the same
// network. Unparseable input never matches.
func SameChainID(a, b string) bool {
	x, err := ParseChainID(a)
	if err != nil {
		return false
	}
	y, err := ParseChainID(b)
	if err != nil {
		return false
	}
	return x == y
}
