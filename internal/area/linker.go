package area

import (
	"fmt"

	"github.com/brunt/sulis/internal/catalogs"
)

type Trigger struct {
	Kind             TriggerKind
	OnActivate       []Action
	InitiallyEnabled bool
	FireMoreThanOnce bool
}

type EncounterData struct {
	Encounter *catalogs.Encounter
	Location  Point
	Size      Size
	// Triggers indexes Area.Triggers.
	Triggers []int
}

func readTriggers(in []TriggerBuilder) []Trigger {
	out := make([]Trigger, len(in))
	for i, t := range in {
		out[i] = Trigger{
			Kind:             t.Kind,
			OnActivate:       t.OnActivate,
			InitiallyEnabled: t.InitiallyEnabled,
			FireMoreThanOnce: t.FireMoreThanOnce,
		}
	}
	return out
}

// LinkEncounters attaches encounter triggers to encounters by location.
// An unresolvable encounter id is fatal; an encounter trigger that no
// encounter claims only produces a diagnostic.
func LinkEncounters(areaID string, triggers []Trigger, encounters []EncounterDataBuilder, res Resources) ([]EncounterData, []Diagnostic, error) {
	used := make(map[int]struct{})
	out := make([]EncounterData, 0, len(encounters))
	for _, eb := range encounters {
		enc, ok := res.Encounter(eb.ID)
		if !ok {
			return nil, nil, missing(areaID, "encounter", eb.ID)
		}

		var linked []int
		for i, t := range triggers {
			loc, ok := encounterLocation(t.Kind)
			if !ok || loc != eb.Location {
				continue
			}
			used[i] = struct{}{}
			linked = append(linked, i)
		}

		out = append(out, EncounterData{
			Encounter: enc,
			Location:  eb.Location,
			Size:      eb.Size,
			Triggers:  linked,
		})
	}

	var diags []Diagnostic
	for i, t := range triggers {
		loc, ok := encounterLocation(t.Kind)
		if !ok {
			continue
		}
		if _, ok := used[i]; ok {
			continue
		}
		diags = append(diags, Diagnostic{
			AreaID:   areaID,
			Kind:     DiagUnmatchedTrigger,
			Index:    i,
			Location: &loc,
			Message:  fmt.Sprintf("invalid encounter trigger %d at point %s", i, loc),
		})
	}
	return out, diags, nil
}
