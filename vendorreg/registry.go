// Package vendorreg holds the static vendor registry: which vendors exist,
// which directory group selects each one, where each vendor's config file
// lives, and whether the vendor is currently enabled. The registry is loaded
// once at startup from a JSON manifest and never changes during a run.
package vendorreg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nexus-hq/nexus/types"
)

// Descriptor is one vendor entry from the manifest.
type Descriptor struct {
	// VendorID is the stable short name drivers and secrets key on.
	VendorID string `json:"vendor_name"`

	// Label is the human-readable vendor name shown to the operator.
	Label string `json:"vendor_display_name"`

	// GroupName is the directory group whose members get this vendor
	// auto-selected.
	GroupName string `json:"entra_group_name"`

	// ConfigPath is the vendor's JSON config file, relative to the
	// manifest unless absolute.
	ConfigPath string `json:"vendor_config"`

	// Enabled says whether the vendor may be driven. Disabled vendors are
	// listed (the UI greys them out) but never invoked.
	Enabled bool `json:"enabled"`
}

type manifest struct {
	Mappings []Descriptor `json:"mappings"`
}

// ErrDisabled is wrapped into the error returned when a disabled vendor is
// asked to run.
var ErrDisabled = fmt.Errorf("vendor is disabled")

// Registry is the loaded, immutable vendor catalog. Descriptors keep their
// manifest order.
type Registry struct {
	descriptors []Descriptor
	byID        map[string]Descriptor
}

// Load reads the manifest file and builds a registry. Relative vendor config
// paths are resolved against the manifest's directory. Duplicate vendor ids
// are a manifest error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendor manifest %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse vendor manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	r := &Registry{byID: make(map[string]Descriptor, len(m.Mappings))}
	for i, d := range m.Mappings {
		if d.VendorID == "" {
			return nil, fmt.Errorf("vendor manifest %s: mappings[%d] has no vendor_name", path, i)
		}
		if _, dup := r.byID[d.VendorID]; dup {
			return nil, fmt.Errorf("vendor manifest %s: duplicate vendor %q", path, d.VendorID)
		}
		if d.ConfigPath != "" && !filepath.IsAbs(d.ConfigPath) {
			d.ConfigPath = filepath.Join(base, d.ConfigPath)
		}
		r.descriptors = append(r.descriptors, d)
		r.byID[d.VendorID] = d
	}

	return r, nil
}

// All returns every descriptor in manifest order, enabled or not.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Enabled returns the vendors that may be driven, in manifest order.
func (r *Registry) Enabled() []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the descriptor for a vendor id.
func (r *Registry) Lookup(vendorID string) (Descriptor, bool) {
	d, ok := r.byID[vendorID]
	return d, ok
}

// Resolve returns the descriptor for a vendor that is about to run. It
// refuses unknown and disabled vendors; the orchestrator must not drive a
// disabled vendor even when externally asked to.
func (r *Registry) Resolve(vendorID string) (Descriptor, error) {
	d, ok := r.byID[vendorID]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown vendor %q", vendorID)
	}
	if !d.Enabled {
		return Descriptor{}, fmt.Errorf("vendor %q: %w", vendorID, ErrDisabled)
	}
	return d, nil
}

// AutoSelect returns the enabled vendors whose directory group the subject
// belongs to, in manifest order. The operator may still override the
// selection freely.
func (r *Registry) AutoSelect(subject *types.Subject) []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if !d.Enabled || d.GroupName == "" {
			continue
		}
		if subject.IsMemberOf(d.GroupName) {
			out = append(out, d)
		}
	}
	return out
}
