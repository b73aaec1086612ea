package components

import "github.com/goliatone/go-leadform/pkg/model"

// Canonical component names used by the vanilla renderer and default
// registry. They match the field kinds of the form definition.
const (
	NameText     = string(model.FieldKindText)
	NameEmail    = string(model.FieldKindEmail)
	NameTextarea = string(model.FieldKindTextarea)
	NameSelect   = string(model.FieldKindSelect)
	NameCombobox = string(model.FieldKindCombobox)
)
