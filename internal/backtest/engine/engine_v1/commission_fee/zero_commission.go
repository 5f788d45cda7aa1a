package commission_fee

// ZeroCommissionFee charges nothing on any fill.
type ZeroCommissionFee struct{}

func NewZeroCommissionFee() *ZeroCommissionFee {
	return &ZeroCommissionFee{}
}

func (c *ZeroCommissionFee) Calculate(quantity float64, price float64) float64 {
	return 0
}
