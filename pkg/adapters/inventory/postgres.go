package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// PostgresSource executes planned queries against the inventory
// database over pgx. All predicates bind as positional parameters;
// identifiers are registry-vetted and double-quoted.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresSource creates a source over an existing pool. The pool's
// lifecycle belongs to the caller unless Close is used.
func NewPostgresSource(pool *pgxpool.Pool, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		logger: logger.Named("inventory-postgres"),
	}
}

// Query implements Source.
func (s *PostgresSource) Query(ctx context.Context, q Query) ([]models.Row, error) {
	sql, args, err := buildSQL(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Relation, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	out := make([]models.Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeDBValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", q.Relation, err)
	}

	s.logger.Debug("inventory query",
		zap.String("relation", q.Relation),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Close implements Source.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

// buildSQL renders a planned query as parameterized PostgreSQL. Rows
// are ordered by the relation's stable key so repeated materializations
// of an unchanged dataset hash identically.
func buildSQL(q Query) (string, []any, error) {
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("query against %s selects no columns", q.Relation)
	}

	quoted := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		quoted[i] = quoteIdent(col)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(q.Relation))

	var args []any
	if len(q.Predicates) > 0 {
		sb.WriteString(" WHERE ")
		for i, p := range q.Predicates {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			clause, clauseArgs, err := renderPredicate(p, len(args)+1)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(clause)
			args = append(args, clauseArgs...)
		}
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(quoteIdent(orderColumn(q.Relation)))

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	return sb.String(), args, nil
}

func renderPredicate(p Predicate, argPos int) (string, []any, error) {
	field := quoteIdent(p.Field)

	switch p.Op {
	case models.OpEq:
		return fmt.Sprintf("%s = $%d", field, argPos), []any{p.Value}, nil
	case models.OpNeq:
		return fmt.Sprintf("%s <> $%d", field, argPos), []any{p.Value}, nil
	case models.OpLt:
		return fmt.Sprintf("%s < $%d", field, argPos), []any{p.Value}, nil
	case models.OpLte:
		return fmt.Sprintf("%s <= $%d", field, argPos), []any{p.Value}, nil
	case models.OpGt:
		return fmt.Sprintf("%s > $%d", field, argPos), []any{p.Value}, nil
	case models.OpGte:
		return fmt.Sprintf("%s >= $%d", field, argPos), []any{p.Value}, nil
	case models.OpIn:
		members, err := inMembers(p.Value)
		if err != nil {
			return "", nil, fmt.Errorf("predicate on %s: %w", p.Field, err)
		}
		placeholders := make([]string, len(members))
		args := make([]any, len(members))
		for i, m := range members {
			placeholders[i] = fmt.Sprintf("$%d", argPos+i)
			args[i] = m
		}
		return fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")), args, nil
	default:
		return "", nil, fmt.Errorf("predicate on %s: unsupported operator %q", p.Field, p.Op)
	}
}

// inMembers expands an "in" value into its members. The validator has
// already required a non-empty list.
func inMembers(value any) ([]any, error) {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty membership list")
		}
		members := make([]any, len(v))
		for i, s := range v {
			members[i] = s
		}
		return members, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty membership list")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("membership value must be a list, got %T", value)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// normalizeDBValue maps driver types onto the Row value vocabulary:
// numerics as int64/float64, timestamps as RFC 3339 strings.
func normalizeDBValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float32:
		return float64(t)
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []byte:
		return string(t)
	default:
		return v
	}
}
