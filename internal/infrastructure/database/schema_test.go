package database

import (
	"os"
	"strings"
	"testing"
)

func tableDef(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE " + table + " ("
	start := strings.Index(schema, marker)
	if start < 0 {
		t.Fatalf("schema has no %s", marker)
	}
	rest := schema[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated definition for %s", table)
	}
	return rest[:end]
}

// The channel and message repositories never send an id: their INSERT
// statements rely on the column default to mint one. The comms tables get
// ids from the application, so they carry none.
func TestSchemaMintsIDsForChatInserts(t *testing.T) {
	raw, err := os.ReadFile("../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	schema := string(raw)

	for _, table := range []string{"channels", "messages"} {
		def := tableDef(t, schema, table)
		if !strings.Contains(def, "PRIMARY KEY DEFAULT gen_random_uuid()") {
			t.Fatalf("%s.id has no generated default; inserts omit the column", table)
		}
	}
}

// The entitlement resolver decodes capabilities as an object; a fresh plan
// row must not default to the array shape.
func TestSchemaCapabilitiesDefaultIsObject(t *testing.T) {
	raw, err := os.ReadFile("../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	def := tableDef(t, string(raw), "workspace_plans")
	if !strings.Contains(def, `DEFAULT '{}'::jsonb`) {
		t.Fatalf("workspace_plans.capabilities default is not an empty object:\n%s", def)
	}
}
