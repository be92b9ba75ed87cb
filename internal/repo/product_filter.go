package repo

import (
	"regexp"
	"strings"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

// ProductFilter describes a product query. Name matching is case-insensitive
// and the name fields are taken literally, not as patterns.
type ProductFilter struct {
	NamePrefix   string
	NameContains string
	MaxQty       *int
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	name := strings.ToLower(p.Name)
	if pf.NamePrefix != "" && !strings.HasPrefix(name, strings.ToLower(pf.NamePrefix)) {
		return false
	}
	if pf.NameContains != "" && !strings.Contains(name, strings.ToLower(pf.NameContains)) {
		return false
	}
	if pf.MaxQty != nil && p.Quantity > *pf.MaxQty {
		return false
	}
	return true
}

// namePattern returns the regular expression used by the document store.
func (pf ProductFilter) namePattern() string {
	switch {
	case pf.NamePrefix != "":
		return "^" + regexp.QuoteMeta(pf.NamePrefix)
	case pf.NameContains != "":
		return regexp.QuoteMeta(pf.NameContains)
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern returns the ILIKE operand used by the SQL store.
func (pf ProductFilter) likePattern() string {
	switch {
	case pf.NamePrefix != "":
		return likeEscaper.Replace(pf.NamePrefix) + "%"
	case pf.NameContains != "":
		return "%" + likeEscaper.Replace(pf.NameContains) + "%"
	}
	return ""
}
