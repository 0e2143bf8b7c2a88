package check

import (
	"fmt"

	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
	G "gorgonia.org/gorgonia"
)

// ValueName is the name of the variable whose distribution is checked
const ValueName = "value"

// BuildModel returns a model with one Flat variable per parameter and a
// variable named ValueName distributed according to fam. Each parameter
// takes the kind and shape of its Domain and starts at the Domain's
// first value. Extras are passed to fam along with the parameter nodes.
func BuildModel(fam distribution.Family, valueDomain *domain.Domain,
	params []domain.Named, extras distribution.Extras) (*model.Model, error) {
	b := model.NewBuilder()

	args := distribution.Args{
		Nodes:  make(map[string]*G.Node, len(params)),
		Extras: extras,
	}
	for _, p := range params {
		v, err := b.Declare(
			p.Name,
			distribution.Flat,
			distribution.Args{},
			model.WithKind(p.Domain.Kind()),
			model.WithShape(p.Domain.Shape()),
			model.WithTestValue(p.Domain.At(0)),
		)
		if err != nil {
			return nil, fmt.Errorf("buildModel: %w", err)
		}
		args.Nodes[p.Name] = v.Node
	}

	_, err := b.Declare(
		ValueName,
		fam,
		args,
		model.WithShape(valueDomain.Shape()),
		model.WithTestValue(valueDomain.At(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("buildModel: %w", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("buildModel: %w", err)
	}
	return m, nil
}
