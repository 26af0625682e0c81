package catalog

import (
	"fmt"
	"regexp"

	"github.com/flovouin/mbops/metabase"
)

// Defines a reference to a collection in Metabase.
type CollectionDefinition struct {
	Id   int    // The ID of the collection. Can be omitted (0) if the name is provided.
	Name string // A regexp that the name of the collection should match. Can be omitted ("") if the ID is provided.
}

// Reports whether a collection with the given ID and name is referenced by one of the definitions, either by ID or
// by a name pattern.
func matchesAnyDefinition(id int, name string, definitions []CollectionDefinition) (bool, error) {
	for _, d := range definitions {
		if d.Id > 0 && d.Id == id {
			return true, nil
		}

		if len(d.Name) == 0 {
			continue
		}

		matched, err := regexp.MatchString(d.Name, name)
		if err != nil {
			return false, fmt.Errorf("invalid collection name pattern '%s': %w", d.Name, err)
		}
		if matched {
			return true, nil
		}
	}

	return false, nil
}

// Returns the first collection matching the included definitions and none of the excluded ones, along with its ID.
// Excluded collections take precedence over inclusion, and an empty list of included definitions matches all
// collections. The root collection is never returned: `nil` means the caller should fall back to it.
func FindCollection(collections []metabase.Collection, included []CollectionDefinition, excluded []CollectionDefinition) (*metabase.Collection, int, error) {
	for i, c := range collections {
		// Only the root collection has a string ID.
		id, err := c.Id.AsCollectionId1()
		if err != nil {
			continue
		}

		isExcluded, err := matchesAnyDefinition(id, c.Name, excluded)
		if err != nil {
			return nil, 0, err
		}
		if isExcluded {
			continue
		}

		if len(included) == 0 {
			return &collections[i], id, nil
		}

		isIncluded, err := matchesAnyDefinition(id, c.Name, included)
		if err != nil {
			return nil, 0, err
		}
		if isIncluded {
			return &collections[i], id, nil
		}
	}

	return nil, 0, nil
}
