package hashcache

import "context"

// SetSchemaVersionForTest overwrites the recorded schema version.
func (c *Cache) SetSchemaVersionForTest(ctx context.Context, version int) error {
	_, err := c.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}
