package fees

// ApplyDiscount returns the payable amount after applying a discount.
// A nil discount leaves the amount unchanged. The result never goes
// below zero.
func ApplyDiscount(amount float64, discount *Discount) float64 {
	if discount == nil {
		return amount
	}
	var reduced float64
	switch discount.Type {
	case DiscountPercentage:
		reduced = amount - amount*discount.Value/100
	case DiscountFlat:
		reduced = amount - discount.Value
	default:
		return amount
	}
	if reduced < 0 {
		return 0
	}
	return reduced
}

// PayableAmount applies the discount to amount only when it covers the
// fee head. This is the gate callers use when computing a student's
// effective total.
func PayableAmount(amount float64, feeHeadID int64, d *Discount) float64 {
	if d != nil && d.AppliesTo(feeHeadID) {
		return ApplyDiscount(amount, d)
	}
	return amount
}

// AppliesTo reports whether the discount covers the given fee head.
// An empty head set applies to all heads.
func (d *Discount) AppliesTo(feeHeadID int64) bool {
	if d == nil {
		return false
	}
	if len(d.FeeHeadIDs) == 0 {
		return true
	}
	for _, id := range d.FeeHeadIDs {
		if id == feeHeadID {
			return true
		}
	}
	return false
}
