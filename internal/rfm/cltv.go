package rfm

import (
	"github.com/shopspring/decimal"

	"github.com/rfmscope/rfmscope/internal/model"
)

// EstimateCLTV fills CLTV = Monetary * Frequency for every customer. The
// result is a relative ranking score, not a discounted cash-value estimate,
// and is applied uniformly with no special cases.
func EstimateCLTV(customers []model.CustomerRFM) {
	for i := range customers {
		c := &customers[i]
		c.CLTV = c.Monetary.Mul(decimal.NewFromInt(int64(c.Frequency)))
	}
}
