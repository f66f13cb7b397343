package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"medals/internal"
	"medals/internal/registry"
	"medals/internal/util"
)

type Reconciler struct {
	registry     *registry.Registry
	iso2         ISO2Resolver
	flagTemplate string
}

type ReconcileResult struct {
	Rows []internal.MedalRow
	// Unmapped holds the sorted, de-duplicated labels that resolved to no NOC.
	Unmapped []string
	// Duplicates holds labels dropped because their NOC already had a row.
	Duplicates []string
}

func NewReconciler(reg *registry.Registry, iso2 ISO2Resolver, flagTemplate string) *Reconciler {
	return &Reconciler{registry: reg, iso2: iso2, flagTemplate: flagTemplate}
}

func (r *Reconciler) Reconcile(extracted []internal.ExtractedRow) ReconcileResult {
	res := ReconcileResult{Rows: make([]internal.MedalRow, 0, len(extracted))}
	unmapped := map[string]struct{}{}
	seen := map[string]struct{}{}

	for _, item := range extracted {
		label := util.CanonicalName(item.Label)

		noc := item.NOC
		if utf8.RuneCountInString(noc) != 3 {
			var ok bool
			noc, ok = r.registry.Lookup(label)
			if !ok {
				unmapped[item.Label] = struct{}{}
				continue
			}
		}
		if _, dup := seen[noc]; dup {
			res.Duplicates = append(res.Duplicates, item.Label)
			continue
		}
		seen[noc] = struct{}{}

		name, ok := r.registry.Name(noc)
		if !ok {
			name = label
		}

		row := internal.MedalRow{
			CountryName: name,
			NOC:         noc,
			Gold:        item.Gold,
			Silver:      item.Silver,
			Bronze:      item.Bronze,
			Total:       item.Total,
		}
		if iso2, ok := r.ResolveISO2(name); ok {
			row.ISO2 = util.StringPtr(iso2)
			row.FlagURL = util.StringPtr(r.FlagURL(iso2))
		}
		res.Rows = append(res.Rows, row)
	}

	for label := range unmapped {
		res.Unmapped = append(res.Unmapped, label)
	}
	sort.Strings(res.Unmapped)
	return res
}

// ResolveISO2 consults the static overrides before the geographic database.
func (r *Reconciler) ResolveISO2(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if iso2, ok := util.ISO2Override(name); ok {
		return iso2, true
	}
	if r.iso2 == nil {
		return "", false
	}
	iso2, ok := r.iso2.ResolveISO2(name)
	if !ok || len(iso2) != 2 {
		return "", false
	}
	return strings.ToUpper(iso2), true
}

func (r *Reconciler) FlagURL(iso2 string) string {
	return fmt.Sprintf(r.flagTemplate, strings.ToLower(iso2))
}
