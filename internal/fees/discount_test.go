package fees

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDiscountPercentage(t *testing.T) {
	d := &Discount{Type: DiscountPercentage, Value: 10}
	require.Equal(t, 450.0, ApplyDiscount(500, d))
}

func TestApplyDiscountFlat(t *testing.T) {
	d := &Discount{Type: DiscountFlat, Value: 100}
	require.Equal(t, 400.0, ApplyDiscount(500, d))
}

func TestApplyDiscountFloorsAtZero(t *testing.T) {
	d := &Discount{Type: DiscountFlat, Value: 600}
	require.Equal(t, 0.0, ApplyDiscount(500, d))
}

func TestApplyDiscountNil(t *testing.T) {
	require.Equal(t, 500.0, ApplyDiscount(500, nil))
}

func TestAppliesToEmptySetMeansAllHeads(t *testing.T) {
	d := &Discount{Type: DiscountPercentage, Value: 5}
	require.True(t, d.AppliesTo(1))
	require.True(t, d.AppliesTo(42))
}

func TestAppliesToRestrictedSet(t *testing.T) {
	d := &Discount{Type: DiscountPercentage, Value: 5, FeeHeadIDs: []int64{1, 3}}
	require.True(t, d.AppliesTo(1))
	require.True(t, d.AppliesTo(3))
	require.False(t, d.AppliesTo(2))
}

func TestPayableAmountGatesOnFeeHead(t *testing.T) {
	d := &Discount{Type: DiscountPercentage, Value: 10, FeeHeadIDs: []int64{1}}
	require.Equal(t, 450.0, PayableAmount(500, 1, d))
	require.Equal(t, 500.0, PayableAmount(500, 2, d))
	require.Equal(t, 500.0, PayableAmount(500, 1, nil))
}
