// Package billing serves the plan catalogue. Plan changes are handled by
// the payment provider and are not performed here.
package billing

type Plan struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	MaxStores int    `json:"max_stores"` // 0 means unlimited
	PriceUSD  int    `json:"price_usd"`
}

var Catalogue = []Plan{
	{Code: "starter", Name: "Starter", MaxStores: 3, PriceUSD: 49},
	{Code: "growth", Name: "Growth", MaxStores: 25, PriceUSD: 199},
	{Code: "enterprise", Name: "Enterprise", MaxStores: 0, PriceUSD: 0},
}

// Lookup returns the plan with the given code. Unknown codes fall back to
// the starter plan.
func Lookup(code string) Plan {
	for _, p := range Catalogue {
		if p.Code == code {
			return p
		}
	}
	return Catalogue[0]
}

// Allows reports whether an account on p may hold n stores.
func (p Plan) Allows(n int) bool {
	return p.MaxStores == 0 || n <= p.MaxStores
}
