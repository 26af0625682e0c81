package metabase

import (
	"bytes"
	"encoding/json"
	"errors"
)

// A database as returned by the Metabase API.
type Database struct {
	Id     int    `json:"id"`
	Name   string `json:"name"`
	Engine string `json:"engine"`
}

// The list of databases returned by `GET /database`.
// Recent Metabase versions wrap the list in a `data` attribute, older ones return a bare array. Both are accepted.
type DatabaseList struct {
	Data  []Database `json:"data"`
	Total *int       `json:"total,omitempty"`
}

func (l *DatabaseList) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var data []Database
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return err
		}

		l.Data = data
		l.Total = nil
		return nil
	}

	var list struct {
		Data  *[]Database `json:"data"`
		Total *int        `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}

	if list.Data == nil {
		return errors.New("the database list has no 'data' attribute")
	}

	l.Data = *list.Data
	l.Total = list.Total
	return nil
}

// A table, without its fields.
type Table struct {
	Id          int     `json:"id"`
	Name        string  `json:"name"`
	Schema      *string `json:"schema,omitempty"`
	DbId        int     `json:"db_id,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// A field (column) of a table.
type Field struct {
	Id           int     `json:"id,omitempty"`
	Name         string  `json:"name"`
	BaseType     string  `json:"base_type"`
	SemanticType *string `json:"semantic_type"`
	TableId      int     `json:"table_id,omitempty"`
}

// A table along with its fields, as returned by `GET /table/{id}/query_metadata`.
type TableMetadata struct {
	Table
	Fields []Field `json:"fields"`
}

// A database along with its tables and their fields, as returned by `GET /database/{id}/metadata`.
type DatabaseMetadata struct {
	Database
	Tables []TableMetadata `json:"tables"`
}

// The ID of a collection, which is either an integer or the `root` string.
type CollectionId struct {
	union json.RawMessage
}

// Returns the collection ID as a string. This fails for integer IDs.
func (t CollectionId) AsCollectionId0() (string, error) {
	var body string
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// Returns the collection ID as an integer. This fails for the `root` collection.
func (t CollectionId) AsCollectionId1() (int, error) {
	var body int
	err := json.Unmarshal(t.union, &body)
	return body, err
}

func (t *CollectionId) FromCollectionId0(v string) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

func (t *CollectionId) FromCollectionId1(v int) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

func (t CollectionId) MarshalJSON() ([]byte, error) {
	if t.union == nil {
		return []byte("null"), nil
	}
	return t.union.MarshalJSON()
}

func (t *CollectionId) UnmarshalJSON(b []byte) error {
	t.union = append(json.RawMessage(nil), b...)
	return nil
}

// A collection (folder) of cards and dashboards.
type Collection struct {
	Id          CollectionId `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Archived    *bool        `json:"archived,omitempty"`
}

// A template tag (parameter) of a native query.
type TemplateTag struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display-name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default"`
}

// The native (SQL) part of a dataset query.
type NativeQuery struct {
	Query        string                 `json:"query"`
	TemplateTags map[string]TemplateTag `json:"template-tags,omitempty"`
}

// The query a card runs against a database.
type DatasetQuery struct {
	Type     string       `json:"type"`
	Native   *NativeQuery `json:"native,omitempty"`
	Database int          `json:"database"`
}

// The body of `POST /card`.
type CreateCardBody struct {
	Name                  string         `json:"name"`
	Description           *string        `json:"description,omitempty"`
	CollectionId          *int           `json:"collection_id,omitempty"`
	DatasetQuery          DatasetQuery   `json:"dataset_query"`
	Display               string         `json:"display"`
	VisualizationSettings map[string]any `json:"visualization_settings"`
}

// A card (question), as returned by the Metabase API. Only the attributes used locally are typed.
type Card struct {
	Id           int     `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	CollectionId *int    `json:"collection_id"`
	Display      string  `json:"display"`
}

// The placement of a card on the dashboard grid.
type DashboardCard struct {
	Id                    int            `json:"id"`
	CardId                *int           `json:"card_id"`
	Row                   int            `json:"row"`
	Col                   int            `json:"col"`
	SizeX                 int            `json:"size_x"`
	SizeY                 int            `json:"size_y"`
	VisualizationSettings map[string]any `json:"visualization_settings,omitempty"`
	ParameterMappings     []any          `json:"parameter_mappings,omitempty"`
}

// A dashboard parameter, displayed as a filter.
type DashboardParameter struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Type    string `json:"type"`
	Target  []any  `json:"target,omitempty"`
	Default any    `json:"default"`
}

// The body of `POST /dashboard`.
type CreateDashboardBody struct {
	Name         string               `json:"name"`
	Description  *string              `json:"description,omitempty"`
	CollectionId *int                 `json:"collection_id,omitempty"`
	Cards        []DashboardCard      `json:"cards,omitempty"`
	Parameters   []DashboardParameter `json:"parameters,omitempty"`
}

// The body of `PUT /dashboard/{id}`. Only non-nil attributes are updated.
type UpdateDashboardBody struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Parameters  *[]DashboardParameter `json:"parameters,omitempty"`
	Dashcards   *[]DashboardCard      `json:"dashcards,omitempty"`
}

// A dashboard, as returned by the Metabase API.
type Dashboard struct {
	Id           int                  `json:"id"`
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	CollectionId *int                 `json:"collection_id"`
	Dashcards    []DashboardCard      `json:"dashcards"`
	Parameters   []DashboardParameter `json:"parameters"`
}

// A column in the result of a card query.
type ResultColumn struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	BaseType    string `json:"base_type"`
}

// The data returned by a card query.
type ResultData struct {
	Rows [][]any        `json:"rows"`
	Cols []ResultColumn `json:"cols"`
}

// The result of `POST /card/{id}/query`.
type CardQueryResult struct {
	Status   string     `json:"status"`
	RowCount int        `json:"row_count"`
	Data     ResultData `json:"data"`
	Error    *string    `json:"error,omitempty"`
}

// The body of `POST /session`.
type CreateSessionBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// A session created by `POST /session`.
type Session struct {
	Id string `json:"id"`
}

// The query parameters of `GET /database`.
type ListDatabasesParams struct {
	Include *string `form:"include,omitempty" json:"include,omitempty"`
}

type CreateCardJSONRequestBody = CreateCardBody

type CreateDashboardJSONRequestBody = CreateDashboardBody

type UpdateDashboardJSONRequestBody = UpdateDashboardBody

type CreateSessionJSONRequestBody = CreateSessionBody
