package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 100, 0},
		{"small fill", 10, 35.5, 0},
		{"large fill", 10000, 250, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity, tc.price)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPercentageCommissionFee() {
	fee, err := NewPercentageCommissionFee(0.001)
	suite.Require().NoError(err)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 100, 0},
		{"ten shares at 35", 10, 35, 0.35},
		{"hundred shares at 12.5", 100, 12.5, 1.25},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity, tc.price)
			suite.InDelta(tc.expected, result, 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPercentageCommissionFeeNegativeRate() {
	_, err := NewPercentageCommissionFee(-0.01)
	suite.Error(err)
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name           string
		model          Model
		rate           float64
		wantErr        bool
		testQuantity   float64
		testPrice      float64
		expectedResult float64
	}{
		{
			name:           "percentage",
			model:          ModelPercentage,
			rate:           0.001,
			testQuantity:   1000,
			testPrice:      10,
			expectedResult: 10.0,
		},
		{
			name:           "zero commission",
			model:          ModelZero,
			testQuantity:   1000,
			testPrice:      10,
			expectedResult: 0.0,
		},
		{
			name:           "empty model defaults to zero",
			model:          Model(""),
			testQuantity:   1000,
			testPrice:      10,
			expectedResult: 0.0,
		},
		{
			name:    "unknown model",
			model:   Model("flat_fee"),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler, err := GetCommissionFeeHandler(tc.model, tc.rate)
			if tc.wantErr {
				suite.Error(err)
				return
			}
			suite.Require().NoError(err)
			suite.NotNil(handler)
			result := handler.Calculate(tc.testQuantity, tc.testPrice)
			suite.InDelta(tc.expectedResult, result, 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestAllModels() {
	suite.Len(AllModels, 2)
	suite.Contains(AllModels, ModelPercentage)
	suite.Contains(AllModels, ModelZero)
}
