package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blang/semver"

	"github.com/pixfx/pixfx"
)

// presetFormatVersion is the current preset schema version. Presets with
// a different major version are rejected.
var presetFormatVersion = semver.MustParse("1.0.0")

// Preset is a saved edit: a named bundle of operation settings that can
// be replayed onto a session.
type Preset struct {
	Version    string       `json:"version"`
	Name       string       `json:"name"`
	Filter     string       `json:"filter,omitempty"`
	Brightness *float64     `json:"brightness,omitempty"`
	Contrast   *float64     `json:"contrast,omitempty"`
	Saturation *float64     `json:"saturation,omitempty"`
	Crop       *PresetCrop  `json:"crop,omitempty"`
	Rotation   int          `json:"rotation,omitempty"`
	Flip       string       `json:"flip,omitempty"`
	Frame      *PresetFrame `json:"frame,omitempty"`
	Text       *PresetText  `json:"text,omitempty"`
}

// PresetCrop is a normalized crop rectangle.
type PresetCrop struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// PresetFrame is a solid border.
type PresetFrame struct {
	Color     string  `json:"color"`
	Thickness float64 `json:"thickness"`
}

// PresetText is a text caption.
type PresetText struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// LoadPreset reads and validates a preset file. The preset's version must
// share its major version with the current schema.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.Version == "" {
		return nil, fmt.Errorf("preset %s: missing version", path)
	}
	v, err := semver.Parse(p.Version)
	if err != nil {
		return nil, fmt.Errorf("preset %s: invalid version %q: %w", path, p.Version, err)
	}
	if v.Major != presetFormatVersion.Major {
		return nil, fmt.Errorf("preset %s: version %s incompatible with %s", path, v, presetFormatVersion)
	}
	return &p, nil
}

// Configure replays the preset onto a session.
func (p *Preset) Configure(session *pixfx.Session) error {
	if p.Filter != "" {
		op, err := session.Activate(pixfx.OpFilters)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.FilterOperation).SetFilter(p.Filter); err != nil {
			return err
		}
	}
	if p.Brightness != nil {
		op, err := session.Activate(pixfx.OpBrightness)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.BrightnessOperation).SetAmount(*p.Brightness); err != nil {
			return err
		}
	}
	if p.Contrast != nil {
		op, err := session.Activate(pixfx.OpContrast)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.ContrastOperation).SetAmount(*p.Contrast); err != nil {
			return err
		}
	}
	if p.Saturation != nil {
		op, err := session.Activate(pixfx.OpSaturation)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.SaturationOperation).SetAmount(*p.Saturation); err != nil {
			return err
		}
	}
	if p.Crop != nil || p.Rotation != 0 {
		op, err := session.Activate(pixfx.OpCropRotation)
		if err != nil {
			return err
		}
		cr := op.(*pixfx.CropRotationOperation)
		if p.Crop != nil {
			if err := cr.SetCrop(p.Crop.X0, p.Crop.Y0, p.Crop.X1, p.Crop.Y1); err != nil {
				return err
			}
		}
		if p.Rotation != 0 {
			if err := cr.SetRotation(p.Rotation); err != nil {
				return err
			}
		}
	}
	if p.Flip != "" {
		op, err := session.Activate(pixfx.OpFlip)
		if err != nil {
			return err
		}
		fl := op.(*pixfx.FlipOperation)
		switch p.Flip {
		case "h":
			fl.SetHorizontal(true)
		case "v":
			fl.SetVertical(true)
		case "hv", "vh":
			fl.SetHorizontal(true)
			fl.SetVertical(true)
		default:
			return fmt.Errorf("preset: invalid flip %q", p.Flip)
		}
	}
	if p.Frame != nil {
		op, err := session.Activate(pixfx.OpFrames)
		if err != nil {
			return err
		}
		fr := op.(*pixfx.FramesOperation)
		if p.Frame.Color != "" {
			fr.SetColor(pixfx.Hex(p.Frame.Color))
		}
		if err := fr.SetThickness(p.Frame.Thickness); err != nil {
			return err
		}
	}
	if p.Text != nil {
		op, err := session.Activate(pixfx.OpText)
		if err != nil {
			return err
		}
		tx := op.(*pixfx.TextOperation)
		tx.SetText(p.Text.Text)
		if err := tx.SetPosition(p.Text.X, p.Text.Y); err != nil {
			return err
		}
		if p.Text.Size > 0 {
			if err := tx.SetSize(p.Text.Size); err != nil {
				return err
			}
		}
		if p.Text.Color != "" {
			tx.SetColor(pixfx.Hex(p.Text.Color))
		}
	}
	return nil
}
