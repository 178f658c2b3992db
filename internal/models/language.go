// Package models defines the domain types shared across lngkit packages.
package models

import "time"

// LanguageFile describes a language file in the languages directory.
type LanguageFile struct {
	Code      string    `json:"code"`
	File      string    `json:"file"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Translation is a single resolved key of a language.
type Translation struct {
	Code  string `json:"code"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
