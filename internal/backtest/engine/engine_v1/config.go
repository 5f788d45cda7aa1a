package engine

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/tidemark/internal/strategy"
	"github.com/rxtech-lab/tidemark/internal/version"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type SizingMode string

const (
	SizingModeFixed   SizingMode = "fixed"
	SizingModeAllCash SizingMode = "all_cash"
)

// Config is the full configuration of one simulation run.
type Config struct {
	StartingCash float64 `yaml:"starting_cash" json:"starting_cash" jsonschema:"title=Starting Cash,description=Starting capital for the simulation,minimum=0" validate:"gt=0"`

	// Stake is the fixed quantity per order; ignored when SizingMode is
	// all_cash.
	Stake      float64    `yaml:"stake" json:"stake" jsonschema:"title=Stake,description=Fixed order quantity" validate:"gte=0"`
	SizingMode SizingMode `yaml:"sizing_mode" json:"sizing_mode" jsonschema:"title=Sizing Mode,description=How order quantity is determined" validate:"oneof=fixed all_cash"`

	CommissionModel commission_fee.Model `yaml:"commission_model" json:"commission_model" jsonschema:"title=Commission Model"`
	CommissionRate  float64              `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Fraction of notional charged per fill,minimum=0" validate:"gte=0"`

	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the simulated period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the simulated period"`

	// EngineVersion is a semver constraint the running engine must
	// satisfy, e.g. ">= 0.2.0". Empty skips the check.
	EngineVersion string `yaml:"engine_version" json:"engine_version" jsonschema:"title=Engine Version,description=Semver constraint on the engine version"`

	// Strategy is validated separately so its errors carry the strategy
	// error code.
	Strategy strategy.Config `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy" validate:"-"`
}

func DefaultConfig() Config {
	return Config{
		StartingCash:    10000,
		Stake:           10,
		SizingMode:      SizingModeFixed,
		CommissionModel: commission_fee.ModelPercentage,
		CommissionRate:  0.001,
		Strategy:        strategy.DefaultConfig(strategy.StrategySMACross),
	}
}

// UnmarshalYAML fills in defaults before decoding so a partial config
// file yields a complete configuration.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw struct {
		StartingCash    *float64             `yaml:"starting_cash"`
		Stake           *float64             `yaml:"stake"`
		SizingMode      SizingMode           `yaml:"sizing_mode"`
		CommissionModel commission_fee.Model `yaml:"commission_model"`
		CommissionRate  *float64             `yaml:"commission_rate"`
		StartTime       *time.Time           `yaml:"start_time"`
		EndTime         *time.Time           `yaml:"end_time"`
		EngineVersion   string               `yaml:"engine_version"`
		Strategy        *strategy.Config     `yaml:"strategy"`
	}

	defaults := DefaultConfig()
	var parsed raw
	if err := unmarshal(&parsed); err != nil {
		return err
	}

	*c = defaults
	if parsed.StartingCash != nil {
		c.StartingCash = *parsed.StartingCash
	}
	if parsed.Stake != nil {
		c.Stake = *parsed.Stake
	}
	if parsed.SizingMode != "" {
		c.SizingMode = parsed.SizingMode
	}
	if parsed.CommissionModel != "" {
		c.CommissionModel = parsed.CommissionModel
	}
	if parsed.CommissionRate != nil {
		c.CommissionRate = *parsed.CommissionRate
	}
	if parsed.StartTime != nil {
		c.StartTime = optional.Some(*parsed.StartTime)
	}
	if parsed.EndTime != nil {
		c.EndTime = optional.Some(*parsed.EndTime)
	}
	c.EngineVersion = parsed.EngineVersion
	if parsed.Strategy != nil {
		c.Strategy = *parsed.Strategy
	}

	return nil
}

// ParseConfig decodes and validates a YAML configuration. Any
// validation failure is reported before the simulation starts.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.SizingMode == SizingModeFixed && c.Stake <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStake, "fixed sizing requires a positive stake, got %f", c.Stake)
	}
	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time must not be before start_time")
	}
	if err := version.CheckConstraint(c.EngineVersion); err != nil {
		return err
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}

	return nil
}

// GenerateSchema builds a JSON schema for editor completion of config
// files.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "commission_fee.Model") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllModels,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "tidemark-simulation-config"
	schema.Description = "Configuration schema for a tidemark simulation run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}
