package area

import "github.com/brunt/sulis/internal/catalogs"

// GeneratorParams are the resolved procedural-generation settings of an area.
type GeneratorParams struct {
	ID          string
	Transitions []TransitionAreaParams
	Encounters  []WeightedEncounter
	Props       []WeightedProp
}

type WeightedEncounter struct {
	Encounter *catalogs.Encounter
	Weight    uint32
}

type WeightedProp struct {
	Prop   *catalogs.Prop
	Weight uint32
}

func newGeneratorParams(areaID string, b *GeneratorParamsBuilder, res Resources) (*GeneratorParams, error) {
	g := &GeneratorParams{
		ID:          b.ID,
		Transitions: b.Transitions,
		Encounters:  make([]WeightedEncounter, 0, len(b.Encounters.Entries)),
		Props:       make([]WeightedProp, 0, len(b.Props.Entries)),
	}
	for _, e := range b.Encounters.Entries {
		enc, ok := res.Encounter(e.ID)
		if !ok {
			return nil, missing(areaID, "encounter", e.ID)
		}
		g.Encounters = append(g.Encounters, WeightedEncounter{Encounter: enc, Weight: e.Weight})
	}
	for _, p := range b.Props.Entries {
		prop, ok := res.Prop(p.ID)
		if !ok {
			return nil, missing(areaID, "prop", p.ID)
		}
		g.Props = append(g.Props, WeightedProp{Prop: prop, Weight: p.Weight})
	}
	return g, nil
}
