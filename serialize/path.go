package serialize

import (
	"fmt"
	"path/filepath"
	"time"
)

// FragmentPath builds the output path for one fragment:
// <root>/<YYYY>/<MM>/<DD>/<HH>_<MM>_<SS>_<section>_part_<NN>.<ext>, with
// date fields derived from initialTimestamp interpreted as Unix seconds.
func FragmentPath(root string, initialTimestamp float64, sectionID string, fileChunkIndex uint32, ext string) string {
	// datetime.fromtimestamp() in the original tool interprets Unix
	// seconds in local time, not UTC; match that so fragment paths
	// line up with the operator's wall clock.
	t := time.Unix(int64(initialTimestamp), 0).Local()

	dir := filepath.Join(root,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
	)

	name := fmt.Sprintf("%02d_%02d_%02d_%s_part_%02d.%s",
		t.Hour(), t.Minute(), t.Second(), sectionID, fileChunkIndex, ext)

	return filepath.Join(dir, name)
}
