package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// Config is the full parameter surface shared by the built-in
// strategies. Each strategy reads the subset it needs.
type Config struct {
	Name string `yaml:"name" json:"name" validate:"required"`

	FastPeriod int `yaml:"fast_period" json:"fast_period" validate:"gt=0"`
	SlowPeriod int `yaml:"slow_period" json:"slow_period" validate:"gt=0"`

	OscillatorPeriod int     `yaml:"oscillator_period" json:"oscillator_period" validate:"gt=0"`
	Overbought       float64 `yaml:"overbought" json:"overbought" validate:"gte=0,lte=100,gtfield=Oversold"`
	Oversold         float64 `yaml:"oversold" json:"oversold" validate:"gte=0,lte=100"`

	BandsPeriod    int     `yaml:"bands_period" json:"bands_period" validate:"gt=1"`
	BandsDeviation float64 `yaml:"bands_deviation" json:"bands_deviation" validate:"gt=0"`

	HammerEnabled       bool `yaml:"hammer_enabled" json:"hammer_enabled"`
	ShootingStarEnabled bool `yaml:"shooting_star_enabled" json:"shooting_star_enabled"`
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FastPeriod:       10,
		SlowPeriod:       30,
		OscillatorPeriod: 14,
		Overbought:       70,
		Oversold:         30,
		BandsPeriod:      20,
		BandsDeviation:   2.0,
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy configuration", err)
	}
	return nil
}
