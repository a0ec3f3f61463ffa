package deepq

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpoint file names embed the global step count as the
// second-to-last underscore-delimited field of the base name, e.g.
// model-smallGrid_10000_100. EncodeStep and DecodeStep are the only
// two places that know this convention.

// EncodeStep returns a checkpoint file name embedding step so that a
// later load can recover it with DecodeStep.
func EncodeStep(prefix string, step int, suffix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, step, suffix)
}

// DecodeStep recovers the global step count embedded in a checkpoint
// path by EncodeStep.
func DecodeStep(path string) (int, error) {
	fields := strings.Split(filepath.Base(path), "_")
	if len(fields) < 3 {
		return 0, fmt.Errorf("decodestep: no step field in %q", path)
	}

	step, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return 0, fmt.Errorf("decodestep: non-numeric step field in "+
			"%q: %v", path, err)
	}
	return step, nil
}

// Save serializes the network's current parameter tensors to path. The
// blob carries neither optimizer state nor the global step; callers
// wanting resumability should build path with EncodeStep.
func (t *Trainer) Save(path string) error {
	data, err := t.net.GobEncode()
	if err != nil {
		return fmt.Errorf("save: could not serialize network: %v", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
