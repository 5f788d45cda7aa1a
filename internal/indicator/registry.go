package indicator

import (
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// Registry holds a set of indicators and updates them in registration
// order so a run is reproducible bar for bar.
type Registry struct {
	byName map[types.IndicatorType]Indicator
	order  []Indicator
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[types.IndicatorType]Indicator),
	}
}

func (r *Registry) Register(ind Indicator) error {
	name := ind.Name()
	if _, ok := r.byName[name]; ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "indicator %s already registered", name)
	}
	r.byName[name] = ind
	r.order = append(r.order, ind)
	return nil
}

func (r *Registry) Get(name types.IndicatorType) (Indicator, error) {
	ind, ok := r.byName[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not registered", name)
	}
	return ind, nil
}

func (r *Registry) UpdateAll(bar types.Bar) {
	for _, ind := range r.order {
		ind.Update(bar)
	}
}
