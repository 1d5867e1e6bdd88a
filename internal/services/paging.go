package services

import "strings"

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// normalizePage clamps pagination inputs: pages are 1-indexed, page size
// defaults to 10 and is capped at 100.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// totalPages is ceil(total / perPage).
func totalPages(total int64, perPage int) int {
	return int((total + int64(perPage) - 1) / int64(perPage))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards so search terms match as plain
// substrings.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
