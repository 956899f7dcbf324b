package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TemplateKind names the recurring template families for deterministic
// transaction id derivation.
type TemplateKind string

const (
	KindExpense       TemplateKind = "expense"
	KindIncome        TemplateKind = "income"
	KindDebt          TemplateKind = "debt"
	KindReinforcement TemplateKind = "reinforcement"
)

// materializationNamespace scopes the UUIDv5 ids of materialized
// transactions. Must never change: changing it would re-derive fresh ids for
// periods that already produced a transaction.
var materializationNamespace = uuid.MustParse("6f7a1c3e-9b2d-4e8a-8f50-2d1b7c4a9e03")

// NewID returns a fresh random entity id.
func NewID() string {
	return uuid.NewString()
}

// MaterializedID derives the id of the transaction a template produces for a
// given period. The same (kind, template, year, month) always yields the same
// id, so repeated materialization within a period cannot mint a second
// transaction even if the description-based duplicate guard misses.
func MaterializedID(kind TemplateKind, templateID string, year int, month time.Month) string {
	name := fmt.Sprintf("%s:%s:%04d-%02d", kind, templateID, year, int(month))
	return uuid.NewSHA1(materializationNamespace, []byte(name)).String()
}
