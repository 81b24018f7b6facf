// Package extract writes the stages of a parsed DA bundle out to files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/mtkbits/dasplit/pkg/da"
)

// Config of an extraction run.
type Config struct {
	// OutDir is where files get written. Empty means relative to the working
	// directory.
	OutDir string
	// Manifest enables writing ManifestName next to the extracted files.
	Manifest bool
}

// Artifact is a single written file.
type Artifact struct {
	Name string `plist:"Name"`
	Path string `plist:"-"`
	Size int    `plist:"Size"`
}

// Result lists everything written for a single entry.
type Result struct {
	HWCode    uint16     `plist:"HWCode"`
	Artifacts []Artifact `plist:"Artifacts"`
}

// ArtifactName returns the file name used for a stage (1 or 2) of the entry
// for hwCode. ext is either "bin" or "sig".
func ArtifactName(stage int, hwCode uint16, ext string) string {
	return fmt.Sprintf("da%d_%#x.%s", stage, hwCode, ext)
}

// Extract writes the payload and, if signed, the signature of both stages of
// every entry in b whose hw code is in want.
func Extract(b *da.Bundle, want da.HWCodeSet, cfg *Config) ([]*Result, error) {
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	var results []*Result
	for _, e := range b.Filter(want) {
		res := &Result{HWCode: e.HWCode}
		for i, r := range []da.Region{e.Stage1, e.Stage2} {
			payload, sig := r.Split()
			if err := res.write(cfg, ArtifactName(i+1, e.HWCode, "bin"), payload); err != nil {
				return nil, err
			}
			// Unsigned stages get no .sig file at all.
			if !r.HasSignature() {
				continue
			}
			if err := res.write(cfg, ArtifactName(i+1, e.HWCode, "sig"), sig); err != nil {
				return nil, err
			}
		}
		glog.Infof("Extracted DA for hw code %#x", e.HWCode)
		results = append(results, res)
	}

	if cfg.Manifest {
		if err := WriteManifest(filepath.Join(cfg.OutDir, ManifestName), b, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Result) write(cfg *Config, name string, data []byte) error {
	path := filepath.Join(cfg.OutDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	glog.V(1).Infof("Wrote %s, %d bytes", path, len(data))
	r.Artifacts = append(r.Artifacts, Artifact{
		Name: name,
		Path: path,
		Size: len(data),
	})
	return nil
}
