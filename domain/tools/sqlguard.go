package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// AllowedTables is the fixed set of analytics tables the agent may read.
// locations/orders/order_items are the normalized silver layer; the ai_*
// views are the pre-joined gold layer the agent should prefer.
var AllowedTables = []string{
	"locations",
	"orders",
	"order_items",
	"ai_orders",
	"ai_order_items",
}

// writeKeywords are mutating statements refused anywhere in a query,
// matched as whole words so they are caught inside subqueries or comments.
var writeKeywords = []string{
	"DELETE",
	"DROP",
	"INSERT",
	"UPDATE",
	"ALTER",
	"CREATE",
	"TRUNCATE",
	"GRANT",
	"REVOKE",
}

var denyPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(writeKeywords, "|") + `)\b`)

// tablePatterns matches an allow-listed table as the direct object of a FROM
// or JOIN clause, optionally quoted, case-insensitively. The closing quote is
// optional in the pattern so that \b anchors on the table name itself.
var tablePatterns = buildTablePatterns()

func buildTablePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(AllowedTables))
	for _, table := range AllowedTables {
		expr := `(?i)\b(?:FROM|JOIN)\s+["` + "`" + `]?` + regexp.QuoteMeta(table) + `["` + "`" + `]?\b`
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// ValidateSQL decides whether a candidate query is a read-only statement
// touching at least one approved table. It is a conservative lexical gate,
// not a SQL parser: anything it cannot prove safe is rejected.
func ValidateSQL(query string) error {
	upper := strings.ToUpper(strings.TrimSpace(query))

	switch {
	case strings.HasPrefix(upper, "SELECT"):
		// ok
	case strings.HasPrefix(upper, "WITH"):
		if !strings.Contains(upper, "SELECT") {
			return fmt.Errorf("only SELECT statements are allowed")
		}
	default:
		return fmt.Errorf("only SELECT statements are allowed")
	}

	if kw := denyPattern.FindString(query); kw != "" {
		return fmt.Errorf("dangerous keyword detected: %s", strings.ToUpper(kw))
	}

	for _, pattern := range tablePatterns {
		if pattern.MatchString(query) {
			return nil
		}
	}

	return fmt.Errorf("query must use one of the allowed tables: %s", strings.Join(AllowedTables, ", "))
}
