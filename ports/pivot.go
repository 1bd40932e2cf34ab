package ports

import (
	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
)

// PivotBuilder cross-tabulates a validated table
type PivotBuilder interface {
	Build(table tabular.Table, spec pivot.Spec) (*pivot.Result, error)
}
