// README: Read-only settings: driver catalog and cake property catalogs.
package settings

import "errors"

var ErrNotFound = errors.New("settings entry not found")

type Driver struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	VehicleInfo string `json:"vehicle_info"`
	Active      bool   `json:"active"`
}

// CatalogKind names a cake-property option list. The lists are operator
// configuration, not enums: shapes/flavors/sizes change without a deploy.
type CatalogKind string

const (
	CatalogShapes  CatalogKind = "shapes"
	CatalogFlavors CatalogKind = "flavors"
	CatalogSizes   CatalogKind = "sizes"
)

type Option struct {
	Kind  CatalogKind `json:"kind"`
	Value string      `json:"value"`
}
