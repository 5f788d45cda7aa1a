package types

type IndicatorType string

const (
	IndicatorTypeSMAFast        IndicatorType = "sma_fast"
	IndicatorTypeSMASlow        IndicatorType = "sma_slow"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeHammer         IndicatorType = "hammer"
	IndicatorTypeShootingStar   IndicatorType = "shooting_star"
)
