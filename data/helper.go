package data

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Open reads a JSON file into target.
func Open[T RunFile | []CalibrationQuote](filename string, target T) (T, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return target, errors.Wrapf(err, "read %s", filename)
	}
	err = json.Unmarshal(file, &target)
	if err != nil {
		return target, errors.Wrapf(err, "decode %s", filename)
	}
	return target, nil
}

// createJson writes v as indented JSON.
func createJson(v any, filename string) error {
	b, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	return errors.Wrapf(os.WriteFile(filename, b, 0644), "write %s", filename)
}

// Save writes a run file.
func Save(filename string, run RunFile) error {
	return createJson(run, filename)
}
