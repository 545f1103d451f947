package source

import (
	"encoding/binary"
	"path/filepath"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively lists every file under uri matching pattern, using
// the TileDB VFS layer so the same code walks a local filesystem or an
// object-store URI without branching — mirrored directly from the
// teacher's search.trawl helper.
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// Discover returns, in stable directory-listing order, up to maxFiles
// source files under root matching pattern. A config URI of "" selects a
// generic TileDB config suitable for local paths.
func Discover(root, pattern, configURI string, maxFiles int) ([]string, error) {
	var (
		cfg *tiledb.Config
		err error
	)
	if configURI == "" {
		cfg, err = tiledb.NewConfig()
	} else {
		cfg, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer cfg.Free()

	ctx, err := tiledb.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	items, err := trawl(vfs, pattern, root, nil)
	if err != nil {
		return nil, err
	}

	sort.Strings(items)

	if maxFiles > 0 && len(items) > maxFiles {
		items = items[:maxFiles]
	}
	return items, nil
}

// ReadAll reads the full contents of uri through the TileDB VFS layer,
// so the Batch Source can transparently read from local or object-store
// paths, mirroring the teacher's GenericStream in-memory mode.
func ReadAll(uri, configURI string) ([]byte, error) {
	var (
		cfg *tiledb.Config
		err error
	)
	if configURI == "" {
		cfg, err = tiledb.NewConfig()
	} else {
		cfg, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer cfg.Free()

	ctx, err := tiledb.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	size, err := vfs.FileSize(uri)
	if err != nil {
		return nil, err
	}

	handle, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	buf := make([]byte, size)
	if err := binary.Read(handle, binary.BigEndian, &buf); err != nil {
		return nil, err
	}
	return buf, nil
}
