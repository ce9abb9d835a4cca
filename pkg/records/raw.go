package records

// RawDocEntry is one API block as extracted by the documentation scraper.
// Only IdentityHint or a parsable CodeBlock/Text is needed to derive a record.
type RawDocEntry struct {
	IdentityHint string `json:"identity_hint" yaml:"identity_hint"`
	Text         string `json:"text" yaml:"text"`
	CodeBlock    string `json:"code_block,omitempty" yaml:"code_block,omitempty"`
	SourceURL    string `json:"source_url" yaml:"source_url"`
	Anchor       string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// RawParameter is a parameter as reported by a code analyzer.
type RawParameter struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Variadic bool   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

// RawCodeSymbol is one symbol as reported by a per-language code analyzer.
type RawCodeSymbol struct {
	QualifiedName string         `json:"qualified_name" yaml:"qualified_name"`
	Parameters    []RawParameter `json:"parameters" yaml:"parameters"`
	ReturnType    string         `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Docstring     string         `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	FilePath      string         `json:"file_path" yaml:"file_path"`
	Line          int            `json:"line" yaml:"line"`
}
