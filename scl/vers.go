package scl

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Version identifies a variant or catalog descriptor revision.
//
// The hash is a lowercase hex string of an sha256 hash over the descriptor name and contents.
// For variants the default string representation is used as content, for catalogs each variant
// hash in registration order. Host and view compare hashes before they start syncing state, a
// mismatch means the descriptors drifted apart.
type Version struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Version returns the version of variant v.
func (v *Variant) Version() Version {
	h := sha256.New()
	io.WriteString(h, v.Key)
	io.WriteString(h, v.String())
	return Version{Name: v.Key, Hash: hex.EncodeToString(h.Sum(nil))}
}

// Version returns the catalog version derived from all registered variant versions.
func (c *Catalog) Version() Version {
	h := sha256.New()
	io.WriteString(h, c.Name)
	for _, v := range c.List {
		io.WriteString(h, v.Version().Hash)
	}
	return Version{Name: c.Name, Hash: hex.EncodeToString(h.Sum(nil))}
}
