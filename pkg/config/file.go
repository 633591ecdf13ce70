package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Config = &File{}

// File stores the settings as JSON on disk.
type File struct {
	values
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		values:   newValues(nil),
		filepath: configPath,
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawConfig, configPath string) *File {
	if c == nil {
		c = &RawConfig{}
	}

	return &File{
		values:   newValues(c),
		filepath: configPath,
	}
}

// Path returns the file backing this config.
func (f *File) Path() string {
	return f.filepath
}

// Load reads the file. A missing or empty file yields the defaults. An invalid
// file is an error and leaves the current values untouched.
func (f *File) Load() error {
	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			f.replace(&RawConfig{})
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.replace(&RawConfig{})
		return nil
	}

	conf := RawConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.replace(&conf)

	return nil
}

func (f *File) Save() error {
	conf := f.snapshot()

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	// Write to a temporary file first so the watcher never sees a half-written config.
	tmp := f.filepath + ".tmp"
	fp, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", tmp)
	}

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(&conf)
	if closeErr := fp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	if err := os.Rename(tmp, f.filepath); err != nil {
		return pkgerrors.Wrapf(err, "failed to replace %s", f.filepath)
	}

	return nil
}
