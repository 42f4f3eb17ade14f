package qiita

import "fmt"

// CreateQuery builds the search query string for the items API.
// The date range is always present; the user clause is appended only
// when userID is non-empty. Dates are YYYY-MM-DD.
func CreateQuery(startDate, endDate, userID string) string {
	query := fmt.Sprintf("created:>=%s created:<=%s", startDate, endDate)
	if userID != "" {
		query = fmt.Sprintf("%s user:%s", query, userID)
	}
	return query
}
