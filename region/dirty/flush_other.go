//go:build !linux && !freebsd && !darwin

package dirty

import "context"

// flushRanges writes dirty ranges back through the mapping when it mirrors
// the file in memory. Mappings without RangeWriter have nothing to flush.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	w, ok := t.m.(RangeWriter)
	if !ok {
		return nil
	}
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, end, ok := clip(r, len(data))
		if !ok {
			continue
		}
		if err := w.WriteRange(int64(start), data[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) syncFD(_ bool) error {
	if w, ok := t.m.(RangeWriter); ok {
		return w.SyncFile()
	}
	return nil
}
