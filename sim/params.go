package sim

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Graph topology kinds understood by the topology package.
const (
	GraphRandom    = "random"
	GraphScaleFree = "scale-free"
)

var validate = newValidator()

// newValidator reports fields by their YAML key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Params holds every model parameter of an experiment. YAML keys match the
// experiment file; validate tags cover single-field and simple cross-field rules.
type Params struct {
	// network
	Nodes      int     `yaml:"nodes" validate:"gte=2"`
	GraphType  string  `yaml:"graph_type" validate:"oneof=random scale-free"`
	GraphParam float64 `yaml:"graph_param" validate:"gt=0"`
	MinWeight  int     `yaml:"min_weight" validate:"gte=1"`
	MaxWeight  int     `yaml:"max_weight" validate:"gtefield=MinWeight"`

	// agents
	Companies int `yaml:"companies" validate:"gte=1,ltefield=Nodes"`
	Trucks    int `yaml:"trucks" validate:"gte=0"`

	// company
	TruckThreshold int     `yaml:"truck_threshold" validate:"gte=0"`
	InitCapital    float64 `yaml:"init_capital" validate:"gt=0"`
	UnitCost       float64 `yaml:"unit_cost" validate:"gte=0"`
	ProfitMargin   float64 `yaml:"profit_margin" validate:"gt=0"`
	TaxRate        float64 `yaml:"tax_rate" validate:"gte=0,lte=1"`

	// client; nil Risk is drawn once per experiment
	Risk          *float64 `yaml:"risk,omitempty" validate:"omitempty,gte=0,lte=1"`
	MinOfferValue float64  `yaml:"min_offer_value" validate:"gte=0"`
	MaxOfferValue float64  `yaml:"max_offer_value" validate:"gtefield=MinOfferValue"`

	// events
	ExistenceTax    float64 `yaml:"existence_tax" validate:"gte=0,lte=1"`
	PEdgeExplosion  float64 `yaml:"p_edge_explosion" validate:"gte=0,lte=1"`
	PTruckExplosion float64 `yaml:"p_truck_explosion" validate:"gte=0,lte=1"`

	// engine
	Transit            TransitMode `yaml:"transit" validate:"omitempty,oneof=instant round-trip"`
	StopOnSoleSurvivor bool        `yaml:"stop_on_sole_survivor"`
}

// DefaultParams returns the baseline market used by every experiment.
func DefaultParams() Params {
	return Params{
		Nodes:          15,
		GraphType:      GraphRandom,
		GraphParam:     0.2,
		MinWeight:      1,
		MaxWeight:      10,
		Companies:      5,
		Trucks:         7,
		TruckThreshold: 100,
		InitCapital:    2500,
		UnitCost:       1,
		ProfitMargin:   1.5,
		TaxRate:        0.05,
		MinOfferValue:  25,
		MaxOfferValue:  80,
		ExistenceTax:   0.05,
		Transit:        TransitInstant,
	}
}

// Validate checks the parameters. Errors name the offending YAML key.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	switch p.GraphType {
	case GraphRandom:
		if p.GraphParam > 1 {
			return fmt.Errorf("graph_param: edge probability must be in (0, 1], got %g", p.GraphParam)
		}
	case GraphScaleFree:
		m := p.GraphParam
		if m != math.Trunc(m) || m < 1 || int(m) >= p.Nodes {
			return fmt.Errorf("graph_param: scale-free attachment count must be an integer in [1, %d), got %g", p.Nodes, m)
		}
	}
	return nil
}

// CompanyParams projects the company cost model out of p.
func (p Params) CompanyParams() CompanyParams {
	transit := p.Transit
	if transit == "" {
		transit = TransitInstant
	}
	return CompanyParams{
		UnitCost:         p.UnitCost,
		TruckThreshold:   p.TruckThreshold,
		ProfitMargin:     p.ProfitMargin,
		TaxRate:          p.TaxRate,
		ExistenceTaxRate: p.ExistenceTax,
		Transit:          transit,
	}
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag()+paramSuffix(fe.Param()), fe.Value()))
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(msgs, "; "))
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
