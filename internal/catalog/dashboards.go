package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/flovouin/mbops/metabase"
)

// An existing card, referenced by name in a dashboard layout.
type NamedCard struct {
	Name string
	Id   int
}

// The position and size of a card on the dashboard grid.
type CardPlacement struct {
	CardName              string         // The name of the card, which should be one of the dashboard cards.
	Row                   int            // The row of the top-left corner.
	Col                   int            // The column of the top-left corner.
	SizeX                 int            // The width, in grid columns.
	SizeY                 int            // The height, in grid rows.
	VisualizationSettings map[string]any // Optional settings overriding the ones of the card.
}

// A dashboard made of existing cards.
type DashboardDefinition struct {
	Name         string
	Description  string
	CollectionId *int
	Cards        []NamedCard     // The cards of the dashboard, in the order they are checked.
	Layout       []CardPlacement // The placement of each card.
}

// Builds the body creating the dashboard, with one placement per layout entry.
// Placements use the card ID as their own ID, which Metabase replaces when saving the dashboard.
func BuildDashboard(def DashboardDefinition) (metabase.CreateDashboardBody, error) {
	cardIds := make(map[string]int, len(def.Cards))
	for _, c := range def.Cards {
		if _, exists := cardIds[c.Name]; exists {
			return metabase.CreateDashboardBody{}, fmt.Errorf("card '%s' is defined more than once", c.Name)
		}
		cardIds[c.Name] = c.Id
	}

	cards := make([]metabase.DashboardCard, 0, len(def.Layout))
	for _, p := range def.Layout {
		cardId, ok := cardIds[p.CardName]
		if !ok {
			return metabase.CreateDashboardBody{}, fmt.Errorf("layout references unknown card '%s'", p.CardName)
		}

		cards = append(cards, metabase.DashboardCard{
			Id:                    cardId,
			CardId:                &cardId,
			Row:                   p.Row,
			Col:                   p.Col,
			SizeX:                 p.SizeX,
			SizeY:                 p.SizeY,
			VisualizationSettings: p.VisualizationSettings,
		})
	}

	var description *string
	if len(def.Description) > 0 {
		description = &def.Description
	}

	return metabase.CreateDashboardBody{
		Name:         def.Name,
		Description:  description,
		CollectionId: def.CollectionId,
		Cards:        cards,
	}, nil
}

// A dashboard filter.
type FilterDefinition struct {
	Name    string // The label of the filter.
	Slug    string // The slug of the filter in dashboard URLs. Derived from the name if empty.
	Id      string // The ID of the filter. Defaults to the slug.
	Type    string // The type of the filter, e.g. `date/all-options`.
	Target  []any  // The dimension targeted by the filter, passed as is.
	Default any    // The default value, `nil` for none.
}

// Makes a slug from the given string, using underscores, and ensures it is unique.
func makeUniqueSlug(str string, existingSlugs map[string]bool) string {
	slg := slug.Make(str)
	slg = strings.ReplaceAll(slg, "-", "_")
	baseSlug := slg

	for i := 1; ; i++ {
		if !existingSlugs[slg] {
			existingSlugs[slg] = true
			return slg
		}

		slg = fmt.Sprintf("%s_%03d", baseSlug, i)
	}
}

// Builds the dashboard parameters for the filters. Slugs are unique within the returned list.
func BuildFilters(defs []FilterDefinition) ([]metabase.DashboardParameter, error) {
	existingSlugs := make(map[string]bool, len(defs))
	params := make([]metabase.DashboardParameter, 0, len(defs))

	for _, d := range defs {
		base := d.Slug
		if len(base) == 0 {
			base = d.Name
		}

		slg := makeUniqueSlug(base, existingSlugs)
		if len(slg) == 0 {
			return nil, errors.New("filter name or slug should be set and non-empty")
		}

		id := d.Id
		if len(id) == 0 {
			id = slg
		}

		params = append(params, metabase.DashboardParameter{
			Id:      id,
			Name:    d.Name,
			Slug:    slg,
			Type:    d.Type,
			Target:  d.Target,
			Default: d.Default,
		})
	}

	return params, nil
}
