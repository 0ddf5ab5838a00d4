package sqlite

// Schema DDL. One row per registered entity; record holds the entity's JSON
// record exactly as the JSON file backend would store it.
const (
	createObjects = `CREATE TABLE IF NOT EXISTS objects (
    object_key TEXT PRIMARY KEY,
    variant TEXT NOT NULL,
    record TEXT NOT NULL
);`

	idxObjectsVariant = `CREATE INDEX IF NOT EXISTS idx_objects_variant ON objects(variant);`
)

// schemaDDL lists all statements run on Open, in order.
var schemaDDL = []string{
	createObjects,
	idxObjectsVariant,
}
