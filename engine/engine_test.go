package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cqsql/cq"
	"github.com/cqsql/cq/config"
	"github.com/cqsql/cq/value"
)

// writeCSV materializes a CSV fixture under a fresh temp directory and
// returns its path, since tables are addressed by file path.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const usersCSV = `name,age,role,active
Alice,25,admin,1
Bob,30,user,1
Eve,42,admin,0
`

// GROUP BY with COUNT(*), ordered descending by the aggregate alias.
func TestGroupByCountOrderBy(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT role, COUNT(*) AS n FROM '" + path + "' GROUP BY role ORDER BY n DESC"

	res, diags, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, []string{"role", "n"}, res.ColumnNames())
	require.Len(t, res.Rows, 2)
	require.Equal(t, "admin", res.Rows[0][0].S)
	require.EqualValues(t, 2, res.Rows[0][1].I)
	require.Equal(t, "user", res.Rows[1][0].S)
	require.EqualValues(t, 1, res.Rows[1][1].I)
}

// WHERE with AND and desugared BETWEEN.
func TestWhereAndBetween(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM '" + path + "' WHERE active = 1 AND age BETWEEN 20 AND 35"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "Alice", res.Rows[0][0].S)
	require.Equal(t, "Bob", res.Rows[1][0].S)
}

// ROW_NUMBER() OVER (PARTITION BY ... ORDER BY ...).
func TestRowNumberWindow(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name, ROW_NUMBER() OVER (PARTITION BY role ORDER BY age) AS rn FROM '" + path + "'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	got := map[string]int64{}
	for _, row := range res.Rows {
		got[row[0].S] = row[1].I
	}
	require.Equal(t, int64(1), got["Alice"])
	require.Equal(t, int64(2), got["Eve"])
	require.Equal(t, int64(1), got["Bob"])
}

// LIKE pattern matching.
func TestLikePattern(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT * FROM '" + path + "' WHERE name LIKE 'A%'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "Alice", res.Rows[0][0].S)
	require.EqualValues(t, 25, res.Rows[0][1].I)
	require.Equal(t, "admin", res.Rows[0][2].S)
}

// Scalar subquery in WHERE.
func TestScalarSubqueryInWhere(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM '" + path + "' WHERE age > (SELECT AVG(age) FROM '" + path + "')"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "Eve", res.Rows[0][0].S)
}

// UNION dedupes to the distinct row count.
func TestUnionDedup(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM '" + path + "' UNION SELECT name FROM '" + path + "'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
}

// UNION ALL is multiset concatenation: the row count is the sum of
// both sides.
func TestUnionAllConcatenates(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM '" + path + "' UNION ALL SELECT name FROM '" + path + "'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 6)
}

// Boundary cases around limits, empty inputs and degenerate math.
func TestBoundaryCases(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)

	t.Run("LIMIT 0 returns no rows", func(t *testing.T) {
		res, _, err := cq.Execute("SELECT * FROM '"+path+"' LIMIT 0", config.Default())
		require.NoError(t, err)
		require.Empty(t, res.Rows)
	})

	t.Run("OFFSET beyond end returns no rows", func(t *testing.T) {
		res, _, err := cq.Execute("SELECT * FROM '"+path+"' LIMIT 10 OFFSET 100", config.Default())
		require.NoError(t, err)
		require.Empty(t, res.Rows)
	})

	t.Run("COUNT(*) on empty table is 0", func(t *testing.T) {
		empty := writeCSV(t, "empty.csv", "name,age,role,active\n")
		res, _, err := cq.Execute("SELECT COUNT(*) AS n FROM '"+empty+"'", config.Default())
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		require.EqualValues(t, 0, res.Rows[0][0].I)
	})

	t.Run("SUM/AVG on empty group is 0.0", func(t *testing.T) {
		empty := writeCSV(t, "empty.csv", "name,age,role,active\n")
		res, _, err := cq.Execute("SELECT SUM(age) AS s, AVG(age) AS a FROM '"+empty+"'", config.Default())
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		require.EqualValues(t, 0.0, res.Rows[0][0].F)
		require.EqualValues(t, 0.0, res.Rows[0][1].F)
	})

	t.Run("MIN/MAX on empty group is Null", func(t *testing.T) {
		empty := writeCSV(t, "empty.csv", "name,age,role,active\n")
		res, _, err := cq.Execute("SELECT MIN(age) AS mn, MAX(age) AS mx FROM '"+empty+"'", config.Default())
		require.NoError(t, err)
		require.True(t, res.Rows[0][0].IsNull())
		require.True(t, res.Rows[0][1].IsNull())
	})

	t.Run("division by zero is Null", func(t *testing.T) {
		res, _, err := cq.Execute("SELECT 1 / 0 AS x FROM '"+path+"' LIMIT 1", config.Default())
		require.NoError(t, err)
		require.True(t, res.Rows[0][0].IsNull())
	})

	t.Run("SQRT(-1) is Null", func(t *testing.T) {
		res, _, err := cq.Execute("SELECT SQRT(-1) AS x FROM '"+path+"' LIMIT 1", config.Default())
		require.NoError(t, err)
		require.True(t, res.Rows[0][0].IsNull())
	})

	t.Run("LIKE '%' matches every string", func(t *testing.T) {
		res, _, err := cq.Execute("SELECT * FROM '"+path+"' WHERE name LIKE '%'", config.Default())
		require.NoError(t, err)
		require.Len(t, res.Rows, 3)
	})
}

// LEFT JOIN emits a null-padded right half for unmatched left rows.
func TestLeftJoinUnmatched(t *testing.T) {
	usersPath := writeCSV(t, "users.csv", usersCSV)
	ordersPath := writeCSV(t, "orders.csv", "user_name,amount\nAlice,100\nAlice,50\n")

	query := "SELECT u.name, o.amount FROM '" + usersPath + "' u LEFT JOIN '" + ordersPath + "' o ON u.name = o.user_name ORDER BY u.name"
	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 4) // Alice x2, Bob (null), Eve (null)

	var bobAmount, eveAmount value.Value
	for _, row := range res.Rows {
		switch row[0].S {
		case "Bob":
			bobAmount = row[1]
		case "Eve":
			eveAmount = row[1]
		}
	}
	require.True(t, bobAmount.IsNull())
	require.True(t, eveAmount.IsNull())
}

// INSERT then DELETE of the exact inserted row is idempotent on row
// count.
func TestInsertDeleteRoundTrip(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	cfg := config.Default()
	cfg.ForceDelete = true

	_, _, err := cq.Execute("INSERT INTO '"+path+"' (name, age, role, active) VALUES ('Carl', 50, 'user', 1)", cfg)
	require.NoError(t, err)

	afterInsert, _, err := cq.Execute("SELECT * FROM '"+path+"'", cfg)
	require.NoError(t, err)
	require.Len(t, afterInsert.Rows, 4)

	_, _, err = cq.Execute("DELETE FROM '"+path+"' WHERE name = 'Carl'", cfg)
	require.NoError(t, err)

	afterDelete, _, err := cq.Execute("SELECT * FROM '"+path+"'", cfg)
	require.NoError(t, err)
	require.Len(t, afterDelete.Rows, 3)
}

// DELETE without WHERE is rejected unless the force flag is set.
func TestDeleteWithoutWhereRejectedByDefault(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	_, _, err := cq.Execute("DELETE FROM '"+path+"'", config.Default())
	require.Error(t, err)
}

// ALTER TABLE RENAME COLUMN is reversible.
func TestAlterRenameColumnReversible(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	cfg := config.Default()

	_, _, err := cq.Execute("ALTER TABLE '"+path+"' RENAME COLUMN age TO years", cfg)
	require.NoError(t, err)
	res, _, err := cq.Execute("SELECT years FROM '"+path+"'", cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"years"}, res.ColumnNames())

	_, _, err = cq.Execute("ALTER TABLE '"+path+"' RENAME COLUMN years TO age", cfg)
	require.NoError(t, err)
	res2, _, err := cq.Execute("SELECT age FROM '"+path+"'", cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"age"}, res2.ColumnNames())
}

// CREATE TABLE ... AS SELECT followed by SELECT * yields the same row
// multiset as the source.
func TestCreateTableAsSelectRoundTrip(t *testing.T) {
	usersPath := writeCSV(t, "users.csv", usersCSV)
	copyPath := filepath.Join(filepath.Dir(usersPath), "users_copy.csv")

	_, _, err := cq.Execute("CREATE TABLE '"+copyPath+"' AS SELECT * FROM '"+usersPath+"'", config.Default())
	require.NoError(t, err)

	res, _, err := cq.Execute("SELECT * FROM '"+copyPath+"'", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
}

// Searched CASE in the SELECT list.
func TestCaseExpression(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name, CASE WHEN age > 30 THEN 'senior' ELSE 'junior' END AS level FROM '" + path + "'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Equal(t, []string{"name", "level"}, res.ColumnNames())
	levels := map[string]string{}
	for _, row := range res.Rows {
		levels[row[0].S] = row[1].S
	}
	require.Equal(t, "junior", levels["Alice"])
	require.Equal(t, "junior", levels["Bob"])
	require.Equal(t, "senior", levels["Eve"])
}

// IN with a literal list, and its NOT IN inversion.
func TestInList(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)

	res, _, err := cq.Execute("SELECT name FROM '"+path+"' WHERE role IN ('admin')", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	res, _, err = cq.Execute("SELECT name FROM '"+path+"' WHERE role NOT IN ('admin')", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "Bob", res.Rows[0][0].S)
}

// HAVING filters materialized groups by re-evaluating aggregates.
func TestHavingFiltersGroups(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT role, COUNT(*) AS n FROM '" + path + "' GROUP BY role HAVING COUNT(*) > 1"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "admin", res.Rows[0][0].S)
}

// An aliased aggregate can still be ordered by its spelled-out form.
func TestOrderByFunctionText(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT role, AVG(age) AS avg_age FROM '" + path + "' GROUP BY role ORDER BY AVG(age) DESC"

	res, diags, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, "admin", res.Rows[0][0].S)
	require.Equal(t, "user", res.Rows[1][0].S)
}

// UPDATE rewrites matching rows in the file.
func TestUpdateRewritesFile(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)

	_, _, err := cq.Execute("UPDATE '"+path+"' SET age = 26 WHERE name = 'Alice'", config.Default())
	require.NoError(t, err)

	res, _, err := cq.Execute("SELECT age FROM '"+path+"' WHERE name = 'Alice'", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.EqualValues(t, 26, res.Rows[0][0].I)
}

// DISTINCT on already-unique rows is the identity.
func TestDistinctIdentity(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	res, _, err := cq.Execute("SELECT DISTINCT name FROM '"+path+"'", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
}

// INTERSECT of a table with itself keeps every distinct row; EXCEPT
// leaves nothing.
func TestIntersectExcept(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)

	res, _, err := cq.Execute("SELECT name FROM '"+path+"' INTERSECT SELECT name FROM '"+path+"'", config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	res, _, err = cq.Execute("SELECT name FROM '"+path+"' EXCEPT SELECT name FROM '"+path+"'", config.Default())
	require.NoError(t, err)
	require.Empty(t, res.Rows)
}

// Cumulative SUM over an ordered partition runs from the partition
// start to the current row.
func TestCumulativeWindowSum(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name, SUM(age) OVER (PARTITION BY role ORDER BY age) AS total FROM '" + path + "'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	totals := map[string]int64{}
	for _, row := range res.Rows {
		totals[row[0].S] = row[1].I
	}
	require.EqualValues(t, 25, totals["Alice"])
	require.EqualValues(t, 67, totals["Eve"])
	require.EqualValues(t, 30, totals["Bob"])
}

// A subquery can stand in for a table in FROM.
func TestSubqueryInFrom(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM (SELECT name, age FROM '" + path + "') t WHERE age > 28"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "Bob", res.Rows[0][0].S)
	require.Equal(t, "Eve", res.Rows[1][0].S)
}

// A subquery referencing the enclosing row's table alias is evaluated
// once per outer row.
func TestCorrelatedSubquery(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT name FROM '" + path + "' u WHERE age > (SELECT AVG(age) FROM '" + path + "' WHERE role = u.role)"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "Eve", res.Rows[0][0].S)
}

// Scalar string functions over a row.
func TestScalarStringFunctions(t *testing.T) {
	path := writeCSV(t, "users.csv", usersCSV)
	query := "SELECT UPPER(name) AS u, LENGTH(name) AS l, CONCAT(name, '-', role) AS c FROM '" + path + "' WHERE name = 'Alice'"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "ALICE", res.Rows[0][0].S)
	require.EqualValues(t, 5, res.Rows[0][1].I)
	require.Equal(t, "Alice-admin", res.Rows[0][2].S)
}

// GROUP BY on a double column folds values that agree to six decimals
// into a single group.
func TestGroupByDoubleRoundsToSixDecimals(t *testing.T) {
	path := writeCSV(t, "scores.csv", "name,score\na,1.0000001\nb,1.0000002\nc,2.5\n")
	query := "SELECT score, COUNT(*) AS n FROM '" + path + "' GROUP BY score"

	res, _, err := cq.Execute(query, config.Default())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.EqualValues(t, 2, res.Rows[0][1].I)
	require.EqualValues(t, 1, res.Rows[1][1].I)
}
