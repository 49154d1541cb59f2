package trade

import (
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PricingPolicy holds the shop-wide rules for shipping and tax
type PricingPolicy struct {
	Currency valueobject.Currency
	// TaxRate is a fraction, 0.08 for 8%
	TaxRate decimal.Decimal
	// FlatShippingFee is charged below the free-shipping threshold
	FlatShippingFee decimal.Decimal
	// FreeShippingThreshold of zero disables free shipping
	FreeShippingThreshold decimal.Decimal
}

// DefaultPricingPolicy returns the policy used when nothing is configured
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		Currency:              valueobject.DefaultCurrency,
		TaxRate:               decimal.RequireFromString("0.08"),
		FlatShippingFee:       decimal.NewFromInt(15),
		FreeShippingThreshold: decimal.NewFromInt(500),
	}
}

// Totals is the price breakdown of an order
type Totals struct {
	Subtotal valueobject.Money
	Shipping valueobject.Money
	Tax      valueobject.Money
	Total    valueobject.Money
}

// Price computes the totals for the given lines
func (p PricingPolicy) Price(items []OrderItem) (Totals, error) {
	currency := p.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	subtotal := valueobject.Zero(currency)
	for _, item := range items {
		var err error
		subtotal, err = subtotal.Add(item.LineTotal)
		if err != nil {
			return Totals{}, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
		}
	}
	return p.totalsFor(subtotal), nil
}

// ShippingFor returns the shipping charge for a subtotal
func (p PricingPolicy) ShippingFor(subtotal valueobject.Money) valueobject.Money {
	if p.FreeShippingThreshold.IsPositive() && subtotal.Amount().GreaterThanOrEqual(p.FreeShippingThreshold) {
		return valueobject.Zero(subtotal.Currency())
	}
	return valueobject.MustMoney(p.FlatShippingFee, subtotal.Currency())
}

// TaxFor returns the tax on a subtotal rounded to cents
func (p PricingPolicy) TaxFor(subtotal valueobject.Money) valueobject.Money {
	return subtotal.Multiply(p.TaxRate).Round(2)
}

func (p PricingPolicy) totalsFor(subtotal valueobject.Money) Totals {
	shipping := p.ShippingFor(subtotal)
	tax := p.TaxFor(subtotal)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.MustAdd(shipping).MustAdd(tax),
	}
}

// Quote prices a subtotal without building order lines. Used by the cart view.
func (p PricingPolicy) Quote(subtotal valueobject.Money) Totals {
	return p.totalsFor(subtotal)
}
