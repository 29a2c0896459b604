package transition

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pkg/errors"
)

// decimalAmount matches unsigned decimals such as "12" or "0.5".
var decimalAmount = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// NativeDecimals is the number of decimals of the native coin.
const NativeDecimals = 12

// Currency is a token the wallet contracts can move.
type Currency struct {
	Token    string
	Decimals int
	// Tag is the transition that moves this token.
	Tag Tag
}

// decimals of every supported token, by lowercase symbol.
var currencies = map[string]int{
	"zil":       12,
	"tyron":     12,
	"s$i":       18,
	"tyrons$i":  18,
	"stzil":     12,
	"gzil":      15,
	"xsgd":      6,
	"xidr":      6,
	"zusdt":     6,
	"zwbtc":     8,
	"zeth":      18,
	"zbnb":      18,
	"zmatic":    18,
	"xcad":      18,
	"vrz":       18,
	"lulu":      6,
	"zopul":     18,
	"lunr":      4,
	"swth":      8,
	"fees":      4,
	"port":      4,
	"zwap":      12,
	"dxcad":     18,
	"zbrkl":     18,
	"sco":       4,
	"carb":      8,
	"dmz":       18,
	"huny":      12,
	"blox":      2,
	"stream":    8,
	"redc":      9,
	"hol":       5,
	"evz":       8,
	"zlp":       18,
	"grph":      8,
	"shards":    12,
	"duck":      2,
	"zpaint":    4,
	"gp":        5,
	"gemz":      0,
	"oki":       5,
	"franc":     6,
	"zwall":     12,
	"pele":      5,
	"gary":      4,
	"consult":   6,
	"zame":      6,
	"wallex":    4,
	"hodl":      0,
	"athlete":   4,
	"milky":     6,
	"bolt":      18,
	"mambo":     12,
	"recap":     12,
	"zch":       6,
	"srv":       2,
	"nftdex":    0,
	"unidex-v2": 2,
	"zillex":    12,
	"zlf":       5,
	"button":    12,
}

// LookupCurrency returns the table entry of token.
func LookupCurrency(token string) (Currency, error) {
	t := strings.ToLower(token)
	d, ok := currencies[t]
	if !ok {
		return Currency{}, errcode.Newf(errcode.UnsupportedCurrency, "unsupported currency %q", token)
	}
	tag := TagTransfer
	if t == "zil" {
		tag = TagSendFunds
	}
	return Currency{Token: t, Decimals: d, Tag: tag}, nil
}

// Scale converts a decimal amount of this token into base units.
func (c Currency) Scale(amount string) (*big.Int, error) {
	return ScaleAmount(amount, c.Decimals)
}

// ScaleAmount converts a non-negative decimal string into an integer
// number of base units. Amounts finer than the token's precision are
// rejected rather than rounded.
func ScaleAmount(amount string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if !decimalAmount.MatchString(s) {
		return nil, errors.Errorf("invalid amount %q", amount)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", amount)
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(unit))
	if !r.IsInt() {
		return nil, errors.Errorf("amount %q exceeds %d decimals", amount, decimals)
	}
	return new(big.Int).Set(r.Num()), nil
}

// Donation returns the optional donation parameter: None for a zero or
// empty amount, otherwise Some of the amount in native base units.
func Donation(amount string) (Value, error) {
	if strings.TrimSpace(amount) == "" {
		return None(TypeUint128), nil
	}
	v, err := ScaleAmount(amount, NativeDecimals)
	if err != nil {
		return Value{}, errors.Wrap(err, "invalid donation")
	}
	if v.Sign() == 0 {
		return None(TypeUint128), nil
	}
	return Some(TypeUint128, v.String()), nil
}
