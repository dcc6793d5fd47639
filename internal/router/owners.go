// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"slices"
	"strings"
)

// Owner is one entry of the owner allow-list.
type Owner struct {
	Number string
	Label  string
}

// NormalizeID reduces a participant id or phone number to its bare number:
// the part before any "@" or device suffix, without a leading "+".
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, '@'); i >= 0 {
		id = id[:i]
	}
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[:i]
	}
	return strings.TrimPrefix(id, "+")
}

// Owners is an immutable owner allow-list. The first entry is the primary
// owner.
type Owners struct {
	list []Owner
	set  map[string]struct{}
}

// NewOwners builds an allow-list. Entries with no number are skipped.
func NewOwners(list []Owner) *Owners {
	o := &Owners{set: make(map[string]struct{}, len(list))}
	for _, owner := range list {
		n := NormalizeID(owner.Number)
		if n == "" {
			continue
		}
		o.list = append(o.list, owner)
		o.set[n] = struct{}{}
	}
	return o
}

// IsOwner reports whether id belongs to any owner.
func (o *Owners) IsOwner(id string) bool {
	_, ok := o.set[NormalizeID(id)]
	return ok
}

// IsPrimary reports whether id belongs to the first owner.
func (o *Owners) IsPrimary(id string) bool {
	if len(o.list) == 0 {
		return false
	}
	n := NormalizeID(id)
	return n != "" && n == NormalizeID(o.list[0].Number)
}

// List returns the owners in configured order.
func (o *Owners) List() []Owner {
	return slices.Clone(o.list)
}
