package extract

import (
	"fmt"
	"os"

	"howett.net/plist"

	"github.com/mtkbits/dasplit/pkg/da"
)

const ManifestName = "manifest.plist"

// Manifest describes an extraction run.
type Manifest struct {
	Identifier string    `plist:"Identifier"`
	Type       string    `plist:"Type"`
	Version    uint32    `plist:"Version"`
	Entries    []*Result `plist:"Entries"`
}

// WriteManifest writes an XML plist describing results, as extracted from b,
// to path.
func WriteManifest(path string, b *da.Bundle, results []*Result) error {
	m := Manifest{
		Identifier: b.Identifier,
		Type:       b.Type.String(),
		Version:    b.Version,
		Entries:    results,
	}
	data, err := plist.MarshalIndent(&m, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("could not serialize manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads back a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read manifest: %w", err)
	}
	var m Manifest
	if _, err := plist.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not parse manifest: %w", err)
	}
	return &m, nil
}
