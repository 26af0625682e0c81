package metabase

import "strings"

// The suffix appended to the site URL to reach the REST API.
const ApiPath = "/api"

// The type of a dataset query written in SQL.
const NativeQueryType = "native"

// The status of a card query that ran to completion.
const QueryStatusCompleted = "completed"

// The name of the literal in an array, indicating a reference to a `Field` object.
const FieldLiteral = "field"

// Returns the REST API endpoint for a Metabase site URL. URLs already pointing to the API are returned as is.
func ApiEndpoint(siteUrl string) string {
	trimmed := strings.TrimRight(siteUrl, "/")
	if strings.HasSuffix(trimmed, ApiPath) {
		return trimmed
	}
	return trimmed + ApiPath
}

// Returns the site URL for a Metabase URL, removing the API suffix if present.
func SiteUrl(url string) string {
	return strings.TrimSuffix(strings.TrimRight(url, "/"), ApiPath)
}
