package origin

import "github.com/chazu/rapidorigin/pkg/geom"

// CursorGuard holds a by-value snapshot of the shared cursor so it can be
// put back after the cursor has been used as a temporary target.
type CursorGuard struct {
	cursor CursorAccessor
	saved  geom.Vec3
}

// SnapshotCursor records the current cursor position.
func SnapshotCursor(c CursorAccessor) *CursorGuard {
	return &CursorGuard{cursor: c, saved: c.Cursor()}
}

// Restore writes the snapshot back. Safe to call more than once.
func (g *CursorGuard) Restore() {
	g.cursor.SetCursor(g.saved)
}
