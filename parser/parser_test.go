package parser

import (
	"testing"

	"github.com/cqsql/cq/ast"
)

func TestParseSelect(t *testing.T) {
	tests := []struct {
		input    string
		wantCols int
	}{
		{"SELECT * FROM 'users.csv'", 1},
		{"SELECT id, name FROM 'users.csv'", 2},
		{"SELECT id, name, email FROM 'users.csv' WHERE id = 1", 3},
		{"SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id", 2},
		{"SELECT COUNT(*) FROM 'users.csv'", 1},
		{"SELECT DISTINCT name FROM 'users.csv'", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			sel, ok := stmt.(*ast.SelectStmt)
			if !ok {
				t.Fatalf("Expected SelectStmt, got %T", stmt)
			}
			if len(sel.Columns) != tt.wantCols {
				t.Errorf("Expected %d columns, got %d", tt.wantCols, len(sel.Columns))
			}
		})
	}
}

func TestParseInsert(t *testing.T) {
	tests := []struct {
		input string
		want  int // expected number of value rows
	}{
		{"INSERT INTO users (id, name) VALUES (1, 'test')", 1},
		{"INSERT INTO users VALUES (1, 'test'), (2, 'test2')", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			ins, ok := stmt.(*ast.InsertStmt)
			if !ok {
				t.Fatalf("Expected InsertStmt, got %T", stmt)
			}
			if len(ins.Values) != tt.want {
				t.Errorf("Expected %d value rows, got %d", tt.want, len(ins.Values))
			}
		})
	}
}

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		input    string
		wantSets int
	}{
		{"UPDATE users SET name = 'test' WHERE id = 1", 1},
		{"UPDATE users SET name = 'test', email = 'a@b.com'", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			upd, ok := stmt.(*ast.UpdateStmt)
			if !ok {
				t.Fatalf("Expected UpdateStmt, got %T", stmt)
			}
			if len(upd.Set) != tt.wantSets {
				t.Errorf("Expected %d SET expressions, got %d", tt.wantSets, len(upd.Set))
			}
		})
	}
}

func TestParseDelete(t *testing.T) {
	tests := []struct {
		input    string
		hasWhere bool
	}{
		{"DELETE FROM users WHERE id = 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			del, ok := stmt.(*ast.DeleteStmt)
			if !ok {
				t.Fatalf("Expected DeleteStmt, got %T", stmt)
			}
			if (del.Where != nil) != tt.hasWhere {
				t.Errorf("Expected hasWhere=%v, got %v", tt.hasWhere, del.Where != nil)
			}
		})
	}
}

// DELETE without WHERE is rejected at parse time, with an ordinary parse
// error, unless the unsafe-delete flag is set.
func TestParseDeleteWithoutWhereRejected(t *testing.T) {
	p := New("DELETE FROM users")
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected DELETE without WHERE to be rejected")
	}

	p2 := New("DELETE FROM users")
	p2.AllowUnsafeDelete(true)
	stmt, err := p2.Parse()
	if err != nil {
		t.Fatalf("unexpected error with force flag: %v", err)
	}
	del, ok := stmt.(*ast.DeleteStmt)
	if !ok {
		t.Fatalf("expected DeleteStmt, got %T", stmt)
	}
	if del.Where != nil {
		t.Error("expected nil WHERE")
	}
}

func TestParseCreateTable(t *testing.T) {
	input := `CREATE TABLE users (id, name, email, created_at)`

	p := New(input)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	create, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		t.Fatalf("Expected CreateTableStmt, got %T", stmt)
	}

	if create.Table.Name != "users" {
		t.Errorf("Expected table name 'users', got %s", create.Table.Name)
	}

	if len(create.Columns) != 4 {
		t.Errorf("Expected 4 columns, got %d", len(create.Columns))
	}
}

func TestParseCreateTableAsSelect(t *testing.T) {
	input := `CREATE TABLE copy AS SELECT * FROM 'users.csv'`

	p := New(input)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	create, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		t.Fatalf("Expected CreateTableStmt, got %T", stmt)
	}
	if create.As == nil {
		t.Fatal("Expected AS SELECT query")
	}
}

func TestParseAlterTable(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"ALTER TABLE users RENAME COLUMN a TO b", "rename"},
		{"ALTER TABLE users ADD COLUMN c", "add"},
		{"ALTER TABLE users DROP COLUMN c", "drop"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			alt, ok := stmt.(*ast.AlterTableStmt)
			if !ok {
				t.Fatalf("Expected AlterTableStmt, got %T", stmt)
			}
			switch tt.kind {
			case "rename":
				if _, ok := alt.Action.(*ast.RenameColumnAction); !ok {
					t.Errorf("expected RenameColumnAction, got %T", alt.Action)
				}
			case "add":
				if _, ok := alt.Action.(*ast.AddColumnAction); !ok {
					t.Errorf("expected AddColumnAction, got %T", alt.Action)
				}
			case "drop":
				if _, ok := alt.Action.(*ast.DropColumnAction); !ok {
					t.Errorf("expected DropColumnAction, got %T", alt.Action)
				}
			}
		})
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"SELECT 1 + 2 FROM 'users.csv'"},
		{"SELECT a AND b OR c FROM 'users.csv'"},
		{"SELECT * FROM 'users.csv' WHERE a = 1 AND b = 2"},
		{"SELECT * FROM 'users.csv' WHERE a BETWEEN 1 AND 10"},
		{"SELECT * FROM 'users.csv' WHERE a IN (1, 2, 3)"},
		{"SELECT * FROM 'users.csv' WHERE a NOT IN (1, 2, 3)"},
		{"SELECT * FROM 'users.csv' WHERE a LIKE '%test%'"},
		{"SELECT * FROM 'users.csv' WHERE a ILIKE '%test%'"},
		{"SELECT CASE WHEN a = 1 THEN 'one' ELSE 'other' END FROM 'users.csv'"},
		{"SELECT CASE a WHEN 1 THEN 'one' ELSE 'other' END FROM 'users.csv'"},
		{"SELECT COUNT(*) FROM 'users.csv'"},
		{"SELECT SUM(amount) FROM 'users.csv'"},
		{"SELECT COALESCE(a, b, c) FROM 'users.csv'"},
		{"SELECT * FROM 'users.csv' WHERE a IN (SELECT id FROM 't2.csv')"},
		{"SELECT name, ROW_NUMBER() OVER (PARTITION BY role ORDER BY age) AS rn FROM 'users.csv'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if stmt == nil {
				t.Fatal("Expected statement, got nil")
			}
		})
	}
}

func TestParseJoins(t *testing.T) {
	tests := []string{
		"SELECT * FROM a JOIN b ON a.id = b.a_id",
		"SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
		"SELECT * FROM a LEFT JOIN b ON a.id = b.a_id",
		"SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.a_id",
		"SELECT * FROM a RIGHT JOIN b ON a.id = b.a_id",
		"SELECT * FROM a FULL OUTER JOIN b ON a.id = b.a_id",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			p := New(input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if stmt == nil {
				t.Fatal("Expected statement, got nil")
			}
		})
	}
}

func TestParseSetOps(t *testing.T) {
	tests := []string{
		"SELECT name FROM 'users.csv' UNION SELECT name FROM 'users.csv'",
		"SELECT name FROM 'users.csv' UNION ALL SELECT name FROM 'users.csv'",
		"SELECT name FROM 'users.csv' INTERSECT SELECT name FROM 'other.csv'",
		"SELECT name FROM 'users.csv' EXCEPT SELECT name FROM 'other.csv'",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			p := New(input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			setOp, ok := stmt.(*ast.SetOp)
			if !ok {
				t.Fatalf("Expected SetOp, got %T", stmt)
			}
			if setOp.Left == nil || setOp.Right == nil {
				t.Error("expected both sides of set op to be populated")
			}
		})
	}
}

func TestParseWindowFunctions(t *testing.T) {
	tests := []string{
		"SELECT ROW_NUMBER() OVER () FROM t",
		"SELECT ROW_NUMBER() OVER (ORDER BY id) FROM t",
		"SELECT ROW_NUMBER() OVER (PARTITION BY type ORDER BY id) FROM t",
		"SELECT SUM(amount) OVER (PARTITION BY user_id) FROM orders",
		"SELECT RANK() OVER (ORDER BY score DESC) FROM t",
		"SELECT LAG(amount) OVER (PARTITION BY user_id ORDER BY id) FROM orders",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			p := New(input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if stmt == nil {
				t.Fatal("Expected statement, got nil")
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	input := `SELECT u.id, u.name, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.active = 1
  AND u.age BETWEEN 20 AND 65
GROUP BY u.id, u.name
HAVING COUNT(o.id) > 5
ORDER BY order_count DESC
LIMIT 100`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p := New(input)
		_, err := p.Parse()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseSimple(b *testing.B) {
	input := "SELECT * FROM 'users.csv' WHERE id = 1"

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p := New(input)
		_, err := p.Parse()
		if err != nil {
			b.Fatal(err)
		}
	}
}
