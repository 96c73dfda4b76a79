package pdfparse

import "fmt"

// Modality identifies one of the three extractable content kinds.
type Modality string

const (
	// ModalityText requests the document's running text.
	ModalityText Modality = "text"
	// ModalityTables requests detected tables as markdown plus cell grids.
	ModalityTables Modality = "tables"
	// ModalityImages requests page images or embedded pictures.
	ModalityImages Modality = "images"
)

// Modalities is a set of requested content kinds.
type Modalities []Modality

// AllModalities returns the full modality set: text, tables, and images.
func AllModalities() Modalities {
	return Modalities{ModalityText, ModalityTables, ModalityImages}
}

// Contains reports whether m includes the given modality.
func (m Modalities) Contains(mod Modality) bool {
	for _, v := range m {
		if v == mod {
			return true
		}
	}
	return false
}

// Validate checks that every entry is a known modality.
func (m Modalities) Validate() error {
	for _, v := range m {
		switch v {
		case ModalityText, ModalityTables, ModalityImages:
		default:
			return fmt.Errorf("pdfparse: invalid modality %q (valid: text, tables, images)", v)
		}
	}
	return nil
}
