package image

import (
	"cmp"
	"slices"

	"github.com/joshuapare/pekit/pkg/types"
)

// Translator turns an RVA into a position inside a mapping.
type Translator interface {
	Translate(rva int64) (int64, error)
}

// IdentityTranslator serves mappings laid out as loaded: the position of an
// RVA is the RVA itself.
type IdentityTranslator struct{}

func (IdentityTranslator) Translate(rva int64) (int64, error) {
	if rva < 0 {
		return 0, types.OutOfRange("image: negative rva %d", rva)
	}
	return rva, nil
}

// Section describes where one section lives in memory and on disk.
type Section struct {
	Name             string
	VirtualAddress   uint32
	VirtualSize      uint32
	PointerToRawData uint32
	SizeOfRawData    uint32
}

// SectionTranslator serves mappings of the on-disk layout. RVAs below the
// first section map 1:1 (the headers); RVAs inside a section map to its raw
// data. RVAs that land in a section's uninitialized tail, or in no section,
// have no file backing and fail with an OutOfRange error.
type SectionTranslator struct {
	sections []Section
}

// NewSectionTranslator returns a translator over sections, which may be in
// any order.
func NewSectionTranslator(sections []Section) *SectionTranslator {
	s := make([]Section, len(sections))
	copy(s, sections)
	slices.SortFunc(s, func(a, b Section) int { return cmp.Compare(a.VirtualAddress, b.VirtualAddress) })
	return &SectionTranslator{sections: s}
}

func (t *SectionTranslator) Translate(rva int64) (int64, error) {
	if rva < 0 {
		return 0, types.OutOfRange("image: negative rva %d", rva)
	}
	if len(t.sections) == 0 || rva < int64(t.sections[0].VirtualAddress) {
		return rva, nil
	}
	for _, s := range t.sections {
		start := int64(s.VirtualAddress)
		span := int64(max(s.VirtualSize, s.SizeOfRawData))
		if rva < start || rva >= start+span {
			continue
		}
		delta := rva - start
		if delta >= int64(s.SizeOfRawData) {
			return 0, types.OutOfRange("image: rva 0x%X in %s has no file backing", rva, s.Name)
		}
		return int64(s.PointerToRawData) + delta, nil
	}
	return 0, types.OutOfRange("image: rva 0x%X is not inside any section", rva)
}
