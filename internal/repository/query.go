package repository

import (
	"fmt"
	"strings"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// patchBuilder accumulates "col=$n" assignments for partial updates.
type patchBuilder struct {
	sets []string
	args []interface{}
}

func (b *patchBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s=$%d", column, len(b.args)))
}

func (b *patchBuilder) empty() bool { return len(b.sets) == 0 }

// build returns "UPDATE table SET ..., updated_at=NOW() WHERE user_id=$x AND id=$y RETURNING cols".
func (b *patchBuilder) build(table, userID, id, returning string, touchUpdatedAt bool) (string, []interface{}) {
	sets := b.sets
	if touchUpdatedAt {
		sets = append(sets, "updated_at=NOW()")
	}
	args := append(b.args, userID, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id=$%d AND id=$%d RETURNING %s",
		table, strings.Join(sets, ", "), len(args)-1, len(args), returning)
	return query, args
}
