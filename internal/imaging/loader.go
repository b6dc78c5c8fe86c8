package imaging

import (
	"fmt"
	"os"
)

// DecodeFile reads the raster stored at path.
//
// Open and stat failures are returned as-is; a directory or a payload the
// decoder rejects is reported the same way Decode reports it.
func (d *Decoder) DecodeFile(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDecode, path)
	}

	raster, err := d.DecodeReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raster, nil
}
