package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/flovouin/mbops/metabase"
)

// A named, typed parameter of a native query.
type TemplateParameter struct {
	Name        string // The name of the parameter, referenced in the SQL as `{{name}}`. Also used as its ID.
	DisplayName string // The label of the parameter in the Metabase UI.
	Type        string // The type of the parameter, e.g. `date`.
	Required    bool   // Whether the query can only run when the parameter is set.
	Default     any    // The default value of the parameter.
}

// Everything needed to create a card running a native (SQL) query.
type NativeCardDefinition struct {
	Name                  string
	Description           string
	CollectionId          *int // The collection in which the card is created. `nil` is the root collection.
	DatabaseId            int
	Query                 string
	Parameters            []TemplateParameter
	Display               string
	VisualizationSettings map[string]any // Passed as is to Metabase.
}

// Builds the body creating the card. The query is embedded verbatim.
func BuildNativeCard(def NativeCardDefinition) metabase.CreateCardBody {
	var tags map[string]metabase.TemplateTag
	if len(def.Parameters) > 0 {
		tags = make(map[string]metabase.TemplateTag, len(def.Parameters))
		for _, p := range def.Parameters {
			tags[p.Name] = metabase.TemplateTag{
				Id:          p.Name,
				Name:        p.Name,
				DisplayName: p.DisplayName,
				Type:        p.Type,
				Required:    p.Required,
				Default:     p.Default,
			}
		}
	}

	var description *string
	if len(def.Description) > 0 {
		description = &def.Description
	}

	vizSettings := def.VisualizationSettings
	if vizSettings == nil {
		vizSettings = map[string]any{}
	}

	return metabase.CreateCardBody{
		Name:         def.Name,
		Description:  description,
		CollectionId: def.CollectionId,
		DatasetQuery: metabase.DatasetQuery{
			Type:     metabase.NativeQueryType,
			Database: def.DatabaseId,
			Native: &metabase.NativeQuery{
				Query:        def.Query,
				TemplateTags: tags,
			},
		},
		Display:               def.Display,
		VisualizationSettings: vizSettings,
	}
}

// Returned (wrapped) for cards whose query completed without returning any row.
var ErrNoData = errors.New("no data returned")

// The outcome of running the query of a single card.
type CardCheck struct {
	Card     NamedCard
	RowCount int   // The number of rows returned by the query.
	Err      error // Set if the query failed or returned no data.
}

// Whether the card returned data.
func (c CardCheck) Works() bool {
	return c.Err == nil
}

// Runs the query of each card, one after the other, and reports which ones return data.
// A card works when its query completes with at least one row. The returned error aggregates the failures of all cards
// that do not work, and is `nil` when all of them do.
func (c *Catalog) CheckCards(ctx context.Context, cards []NamedCard) ([]CardCheck, error) {
	var errs *multierror.Error
	checks := make([]CardCheck, 0, len(cards))

	for _, card := range cards {
		check := CardCheck{Card: card}

		result, err := c.RunCardQuery(ctx, card.Id)
		switch {
		case err != nil:
			check.Err = err
		case result.Status != metabase.QueryStatusCompleted:
			check.Err = fmt.Errorf("query status is '%s'", result.Status)
		case len(result.Data.Rows) == 0:
			check.Err = ErrNoData
		default:
			check.RowCount = len(result.Data.Rows)
		}

		if check.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("card '%s' (%d): %w", card.Name, card.Id, check.Err))
		}

		checks = append(checks, check)
	}

	return checks, errs.ErrorOrNil()
}

// Defines what happens to the dashboard creation when some of its cards do not return data.
type CardCheckPolicy string

const (
	// Cards are checked and failures are reported, but the dashboard is always created.
	CardCheckWarn CardCheckPolicy = "warn"
	// The dashboard is not created if any card fails.
	CardCheckAbort CardCheckPolicy = "abort"
	// Cards are not checked.
	CardCheckSkip CardCheckPolicy = "skip"
)

// Parses a policy name. The empty string is the default `warn` policy.
func ParseCardCheckPolicy(s string) (CardCheckPolicy, error) {
	switch p := CardCheckPolicy(s); p {
	case "":
		return CardCheckWarn, nil
	case CardCheckWarn, CardCheckAbort, CardCheckSkip:
		return p, nil
	}

	return "", fmt.Errorf("unknown card check policy '%s', expected one of warn, abort or skip", s)
}

// Whether cards should be checked at all.
func (p CardCheckPolicy) ShouldCheck() bool {
	return p != CardCheckSkip
}

// Whether the dashboard should be created given the error returned by `CheckCards`.
func (p CardCheckPolicy) ShouldProceed(checkErr error) bool {
	return p != CardCheckAbort || checkErr == nil
}
