package tools

import (
	"strings"
	"testing"
)

func TestValidateSQLAccepts(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "simple select",
			query: "SELECT * FROM orders",
		},
		{
			name:  "lowercase",
			query: "select total_cents from orders where state = 'COMPLETED'",
		},
		{
			name:  "leading whitespace",
			query: "   \n\tSELECT id FROM locations",
		},
		{
			name:  "with cte",
			query: "WITH daily AS (SELECT date_trunc('day', created_at) d, sum(total_cents) s FROM ai_orders GROUP BY 1) SELECT * FROM daily",
		},
		{
			name:  "join on allowed table",
			query: "SELECT l.name, sum(o.total_cents) FROM some_cte c JOIN ai_order_items o ON o.id = c.id GROUP BY 1",
		},
		{
			name:  "double quoted table",
			query: `SELECT * FROM "orders" LIMIT 10`,
		},
		{
			name:  "quoted mixed case table",
			query: `SELECT * FROM "Orders"`,
		},
		{
			name:  "backtick quoted table",
			query: "SELECT * FROM `order_items`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSQL(tt.query); err != nil {
				t.Fatalf("ValidateSQL(%q) = %v, want nil", tt.query, err)
			}
		})
	}
}

func TestValidateSQLRejects(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantSub string
	}{
		{
			name:    "delete statement",
			query:   "DELETE FROM orders WHERE id = 1",
			wantSub: "only SELECT",
		},
		{
			name:    "insert statement",
			query:   "INSERT INTO orders (id) VALUES (1)",
			wantSub: "only SELECT",
		},
		{
			name:    "embedded drop",
			query:   "SELECT * FROM orders; DROP TABLE orders",
			wantSub: "DROP",
		},
		{
			name:    "mixed case update inside select",
			query:   "SELECT * FROM orders WHERE id IN (uPdAtE orders SET x = 1)",
			wantSub: "UPDATE",
		},
		{
			name:    "truncate keyword",
			query:   "SELECT truncate FROM orders",
			wantSub: "TRUNCATE",
		},
		{
			name:    "table outside allow list",
			query:   "SELECT * FROM customers",
			wantSub: "allowed tables",
		},
		{
			name:    "allowed name not in from position",
			query:   "SELECT orders FROM customers",
			wantSub: "allowed tables",
		},
		{
			name:    "with and no select",
			query:   "WITH x AS (VALUES (1)) TABLE x",
			wantSub: "only SELECT",
		},
		{
			name:    "empty query",
			query:   "",
			wantSub: "only SELECT",
		},
		{
			name:    "prefix of allowed table",
			query:   "SELECT * FROM orders_archive",
			wantSub: "allowed tables",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSQL(tt.query)
			if err == nil {
				t.Fatalf("ValidateSQL(%q) = nil, want error containing %q", tt.query, tt.wantSub)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("ValidateSQL(%q) = %q, want substring %q", tt.query, err.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidateSQLRejectionNamesAllowList(t *testing.T) {
	err := ValidateSQL("SELECT * FROM customers")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, table := range AllowedTables {
		if !strings.Contains(err.Error(), table) {
			t.Errorf("error %q does not name allowed table %q", err.Error(), table)
		}
	}
}
