package assistant

import "strings"

// campusKeywords are the fixed institution-specific terms that mark a
// query as campus-related and eligible for retrieval.
var campusKeywords = []string{
	"thapar", "tiet", "patiala", "hostel", "mess", "warden",
	"pg", "wifi", "cafeteria", "fee", "academic", "library",
	"lhc", "placement", "cgpa", "semester", "campus",
}

// Gate decides whether a query is in-domain. Pure function over a fixed
// keyword list; no external calls.
type Gate struct {
	keywords []string
}

// NewGate creates a gate over the campus keyword list.
func NewGate() *Gate {
	return &Gate{keywords: campusKeywords}
}

// InDomain reports whether the query contains any campus keyword,
// matched case-insensitively as a substring.
func (g *Gate) InDomain(query string) bool {
	q := strings.ToLower(query)
	for _, keyword := range g.keywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}
