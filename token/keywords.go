package token

import "strings"

var keywords map[string]Token

func init() {
	keywords = map[string]Token{
		"select": SELECT, "distinct": DISTINCT, "from": FROM, "where": WHERE,
		"group": GROUP, "by": BY, "order": ORDER, "and": AND, "or": OR,
		"not": NOT, "in": IN, "as": AS, "asc": ASC, "desc": DESC,
		"having": HAVING, "join": JOIN, "left": LEFT, "right": RIGHT,
		"inner": INNER, "outer": OUTER, "full": FULL, "on": ON,
		"limit": LIMIT, "offset": OFFSET, "like": LIKE, "ilike": ILIKE,
		"union": UNION, "intersect": INTERSECT, "except": EXCEPT, "all": ALL,
		"between": BETWEEN, "insert": INSERT, "into": INTO, "values": VALUES,
		"update": UPDATE, "set": SET, "delete": DELETE, "create": CREATE,
		"table": TABLE, "alter": ALTER, "rename": RENAME, "column": COLUMN,
		"add": ADD, "drop": DROP, "to": TO, "case": CASE, "when": WHEN,
		"then": THEN, "else": ELSE, "end": END, "over": OVER,
		"partition": PARTITION, "row_number": ROW_NUMBER, "rank": RANK,
		"dense_rank": DENSE_RANK, "lag": LAG, "lead": LEAD, "null": NULL,
	}
}

// LookupIdent reclassifies an identifier as a keyword token when it
// case-insensitively matches a reserved word; otherwise it stays IDENT.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}
