package registry

import (
	"medals/internal"
	"medals/internal/util"
)

// Registry is the NOC <-> country-name reference, indexed both ways.
type Registry struct {
	NocToName map[string]string
	NameToNoc map[string]string
}

func Build(entries []internal.ReferenceEntry) *Registry {
	r := &Registry{
		NocToName: map[string]string{},
		NameToNoc: map[string]string{},
	}
	for _, e := range entries {
		noc := util.Normalize(e.NOC)
		name := util.Normalize(e.CountryName)
		if noc == "" || name == "" {
			continue
		}
		r.NocToName[noc] = name
		r.NameToNoc[util.NameKey(name)] = noc
	}
	return r
}

func (r *Registry) Name(noc string) (string, bool) {
	name, ok := r.NocToName[noc]
	return name, ok
}

// Lookup resolves a free-text country label to its NOC.
func (r *Registry) Lookup(label string) (string, bool) {
	key := util.NameKey(label)
	if key == "" {
		return "", false
	}
	noc, ok := r.NameToNoc[key]
	return noc, ok
}

func (r *Registry) Len() int {
	return len(r.NocToName)
}
