package pixfx

// FilterOperation applies one of the registered filter variants. A fresh
// operation selects the identity filter and therefore has no effect until
// SetFilter chooses another variant.
type FilterOperation struct {
	operationBase
	filter *Filter
}

// NewFilterOperation returns a filter operation set to the identity
// filter.
func NewFilterOperation() *FilterOperation {
	f, err := LookupFilter(FilterIdentity)
	if err != nil {
		// The identity filter is registered in this package's init.
		panic(err)
	}
	return &FilterOperation{
		operationBase: operationBase{id: OpFilters},
		filter:        f,
	}
}

// SetFilter selects the filter variant by identifier. An unknown
// identifier returns ErrUnknownFilter and keeps the current selection.
func (o *FilterOperation) SetFilter(id string) error {
	f, err := LookupFilter(id)
	if err != nil {
		return err
	}
	if f == o.filter {
		return nil
	}
	o.filter = f
	o.touch()
	return nil
}

// Filter returns the currently selected filter.
func (o *FilterOperation) Filter() *Filter { return o.filter }

// IsIdentity reports whether the identity filter is selected.
func (o *FilterOperation) IsIdentity() bool {
	return o.filter.Identifier() == FilterIdentity
}

func (o *FilterOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

// Apply renders the selected filter's primitive stack.
func (o *FilterOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	if err := o.filter.Render(r, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
