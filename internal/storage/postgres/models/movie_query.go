package models

import (
	"fmt"
	"strings"

	"amdb/proj/internal/domain/filters"

	"github.com/jackc/pgx/v5"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildMovieWhere renders the filter part of a movie listing and its positional arguments.
func buildMovieWhere(q *filters.MovieQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Q != "" {
		pattern := likeEscaper.Replace(strings.ToLower(q.Q)) + "%"
		conds = append(conds, fmt.Sprintf(`lower(title) LIKE %s ESCAPE '\'`, arg(pattern)))
	}
	if len(q.Genres) > 0 {
		conds = append(conds, fmt.Sprintf("genre @> %s::text[]", arg(q.Genres)))
	}
	// Bounds are fractional; an untyped parameter next to an integer column would be inferred as integer.
	rangeConds := func(column string, r filters.Range) {
		if r.Gt != nil {
			conds = append(conds, fmt.Sprintf("%s > %s::double precision", column, arg(*r.Gt)))
		}
		if r.Lt != nil {
			conds = append(conds, fmt.Sprintf("%s < %s::double precision", column, arg(*r.Lt)))
		}
	}
	rangeConds("duration", q.Duration)
	rangeConds("budget", q.Budget)
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// buildMovieOrder renders the ORDER BY clause. Only one key is ever used.
func buildMovieOrder(q *filters.MovieQuery, titleCollation string) string {
	column := q.SortColumn()
	if column == filters.SortByTitle && titleCollation != "" {
		column += " COLLATE " + pgx.Identifier{titleCollation}.Sanitize()
	}
	return fmt.Sprintf("ORDER BY %s %s", column, q.SortDirection())
}

func buildMovieCountQuery(q *filters.MovieQuery) (string, []any) {
	where, args := buildMovieWhere(q)
	return strings.TrimSpace("SELECT count(*) FROM movies " + where), args
}

func buildMoviePageQuery(q *filters.MovieQuery, titleCollation string) (string, []any) {
	where, args := buildMovieWhere(q)
	args = append(args, q.Limit, q.Offset())
	parts := []string{"SELECT id, title, poster_path FROM movies"}
	if where != "" {
		parts = append(parts, where)
	}
	parts = append(parts,
		buildMovieOrder(q, titleCollation),
		fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
	)
	return strings.Join(parts, " "), args
}
