package main

import (
	"fmt"
	"io"
)

func incrementFunctionName(table string) string {
	return "increment_" + table
}

// hostedSchemaSQL is what an operator runs once in the hosted database when
// the counter is reached through PostgREST. The table cannot be created over
// the REST API, and the function gives increment a single-statement path.
func hostedSchemaSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	id INTEGER PRIMARY KEY,
	count BIGINT NOT NULL DEFAULT 0
);

INSERT INTO %[1]s (id, count) VALUES (%[3]d, 0)
ON CONFLICT (id) DO NOTHING;

CREATE OR REPLACE FUNCTION %[2]s(row_id INTEGER)
RETURNS BIGINT
LANGUAGE sql
AS $$
	UPDATE %[1]s SET count = count + 1 WHERE id = row_id RETURNING count;
$$;
`, table, incrementFunctionName(table), counterRowID)
}

func printSchema(w io.Writer, table string) error {
	_, err := io.WriteString(w, hostedSchemaSQL(table))
	return err
}
