package inventory

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/itam/internal/models"
)

// Manifest is the document format of an inventory file:
//
//	assets:
//	  - hostname: PC-001
//	    serial: SN123
//	    location: Paris
type Manifest struct {
	Assets []models.AssetInput `yaml:"assets"`
}

// Parse decodes a manifest. Unknown keys are rejected so typos do not
// silently drop fields. An empty document yields no assets.
func Parse(data []byte) ([]models.AssetInput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("inventory: parse manifest: %w", err)
	}
	return m.Assets, nil
}
