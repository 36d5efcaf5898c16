package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cqsql/cq/value"
)

func TestLoadInfersCellKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age,score,note\nAlice,25,4.5,\n"), 0o644))

	tbl, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age", "score", "note"}, tbl.ColumnNames())
	require.Len(t, tbl.Rows, 1)

	row := tbl.Rows[0]
	require.Equal(t, value.String, row[0].Kind)
	require.Equal(t, value.Integer, row[1].Kind)
	require.Equal(t, value.Double, row[2].Kind)
	require.True(t, row[3].IsNull())
}

// Fields holding the delimiter, the quote character or a newline are
// quoted on save, with embedded quotes doubled, and survive a reload.
func TestSaveQuotesSpecialFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.csv")

	tbl, err := Load(path, DefaultOptions())
	require.Error(t, err) // file does not exist yet

	require.NoError(t, os.WriteFile(path, []byte("note\nplain\n"), 0o644))
	tbl, err = Load(path, DefaultOptions())
	require.NoError(t, err)

	tbl.Rows = append(tbl.Rows,
		[]value.Value{value.NewString("a,b")},
		[]value.Value{value.NewString(`say "hi"`)},
		[]value.Value{value.NewString("line\nbreak")},
	)
	require.NoError(t, Save(path, tbl))

	reloaded, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, reloaded.Rows, 4)
	require.Equal(t, "a,b", reloaded.Rows[1][0].S)
	require.Equal(t, `say "hi"`, reloaded.Rows[2][0].S)
	require.Equal(t, "line\nbreak", reloaded.Rows[3][0].S)
}

func TestLoadCustomDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semi.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0o644))

	opts := DefaultOptions()
	opts.Delimiter = ';'
	tbl, err := Load(path, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	require.EqualValues(t, 1, tbl.Rows[0][0].I)
	require.EqualValues(t, 2, tbl.Rows[0][1].I)
}
