package pixfx

// BrightnessOperation shifts all channels by a constant amount.
// Amount 0 is the identity.
type BrightnessOperation struct {
	operationBase
	amount float64
}

// NewBrightnessOperation returns a brightness operation at its identity
// setting.
func NewBrightnessOperation() *BrightnessOperation {
	return &BrightnessOperation{operationBase: operationBase{id: OpBrightness}}
}

// SetAmount sets the brightness shift in [-1, 1]. Invalid amounts are
// rejected and the current value kept.
func (o *BrightnessOperation) SetAmount(amount float64) error {
	p := Brightness{Amount: amount}
	if err := p.Validate(); err != nil {
		return err
	}
	if amount == o.amount {
		return nil
	}
	o.amount = amount
	o.touch()
	return nil
}

// Amount returns the current brightness shift.
func (o *BrightnessOperation) Amount() float64 { return o.amount }

func (o *BrightnessOperation) IsIdentity() bool { return o.amount == 0 }

func (o *BrightnessOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *BrightnessOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	if err := r.RenderPrimitive(dst, Brightness{Amount: o.amount}); err != nil {
		return nil, err
	}
	return dst, nil
}

// ContrastOperation scales channel distance from mid-gray.
// Amount 1 is the identity.
type ContrastOperation struct {
	operationBase
	amount float64
}

// NewContrastOperation returns a contrast operation at its identity
// setting.
func NewContrastOperation() *ContrastOperation {
	return &ContrastOperation{
		operationBase: operationBase{id: OpContrast},
		amount:        1,
	}
}

// SetAmount sets the contrast factor. Values below 0 are rejected.
func (o *ContrastOperation) SetAmount(amount float64) error {
	p := Contrast{Amount: amount}
	if err := p.Validate(); err != nil {
		return err
	}
	if amount == o.amount {
		return nil
	}
	o.amount = amount
	o.touch()
	return nil
}

// Amount returns the current contrast factor.
func (o *ContrastOperation) Amount() float64 { return o.amount }

func (o *ContrastOperation) IsIdentity() bool { return o.amount == 1 }

func (o *ContrastOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *ContrastOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	if err := r.RenderPrimitive(dst, Contrast{Amount: o.amount}); err != nil {
		return nil, err
	}
	return dst, nil
}

// SaturationOperation scales color intensity around the luma axis.
// Amount 1 is the identity; 0 is full grayscale.
type SaturationOperation struct {
	operationBase
	amount float64
}

// NewSaturationOperation returns a saturation operation at its identity
// setting.
func NewSaturationOperation() *SaturationOperation {
	return &SaturationOperation{
		operationBase: operationBase{id: OpSaturation},
		amount:        1,
	}
}

// SetAmount sets the saturation factor. Values below 0 are rejected.
func (o *SaturationOperation) SetAmount(amount float64) error {
	p := Saturation{Amount: amount}
	if err := p.Validate(); err != nil {
		return err
	}
	if amount == o.amount {
		return nil
	}
	o.amount = amount
	o.touch()
	return nil
}

// Amount returns the current saturation factor.
func (o *SaturationOperation) Amount() float64 { return o.amount }

func (o *SaturationOperation) IsIdentity() bool { return o.amount == 1 }

func (o *SaturationOperation) freeze() Operation {
	c := *o
	c.notify = nil
	return &c
}

func (o *SaturationOperation) Apply(r Renderer, src *Pixmap) (*Pixmap, error) {
	dst := src.Clone()
	if err := r.RenderPrimitive(dst, Saturation{Amount: o.amount}); err != nil {
		return nil, err
	}
	return dst, nil
}
