package database

// Atomic write utilities.
//
// Every mutating coordinator operation (create map, like, unlike,
// delete map, delete account) is sent to SurrealDB as a single batch
// wrapped in BEGIN/COMMIT TRANSACTION, so the server either applies
// all statements or none. AtomicBatch is the fluent front door;
// TxBuilder sits beneath it and rewrites statement variables
// ($id -> $v1_id) so statements contributed by different repositories
// cannot collide on variable names.

import (
	"context"
	"fmt"
	"strings"
)

// TxBuilder accumulates statements for one transaction. Not safe for
// concurrent use; each operation builds its own.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	seq        int
}

func NewTxBuilder() *TxBuilder {
	return &TxBuilder{vars: make(map[string]interface{})}
}

// Add appends a statement, rewriting each $var to a sequence-prefixed
// name. The returned map gives the rewritten name for every original
// variable, for callers that reference a statement's result later in
// the same transaction.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	renamed := make(map[string]string, len(vars))
	for name, value := range vars {
		tb.seq++
		fresh := fmt.Sprintf("v%d_%s", tb.seq, name)
		query = strings.ReplaceAll(query, "$"+name, "$"+fresh)
		tb.vars[fresh] = value
		renamed[name] = fresh
	}
	tb.statements = append(tb.statements, query)
	return renamed
}

// AddRaw appends a statement verbatim, with no variable rewriting.
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

// Build assembles the full transaction text and its merged variables.
// An empty builder yields an empty query.
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")
	return sb.String(), tb.vars
}

// Execute sends the built transaction. An empty builder is a no-op.
func (tb *TxBuilder) Execute(ctx context.Context, db Database) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}

// AtomicBatch collects independent statements and runs them as one
// transaction. The repositories use it for every multi-document write.
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	vars  map[string]interface{}
}

func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{}
}

// Add queues a statement with its variables. Returns the batch for
// chaining.
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, vars: vars})
	return ab
}

// Execute sends the whole batch as a single transaction. An empty
// batch is a no-op and never reaches the database.
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(ab.queries) == 0 {
		return nil
	}
	tb := NewTxBuilder()
	for _, q := range ab.queries {
		tb.Add(q.query, q.vars)
	}
	_, err := tb.Execute(ctx, db)
	return err
}

// Len reports the number of queued statements.
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}
