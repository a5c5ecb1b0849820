package model

// Media is a photo, video or social profile attached to teams or events.
type Media struct {
	Meta `json:"-"`

	Key                 string   `json:"key"`
	MediaType           int      `json:"media_type_enum"`
	ForeignKey          string   `json:"foreign_key"`
	Year                *int     `json:"year,omitempty"`
	References          []string `json:"references,omitempty"`
	PreferredReferences []string `json:"preferred_references,omitempty"`
	MediaTags           []int    `json:"media_tag_enum,omitempty"`
	DetailsJSON         *string  `json:"details_json,omitempty"`
	Private             *bool    `json:"private,omitempty"`
}

func (m *Media) Kind() Kind      { return KindMedia }
func (m *Media) KeyName() string { return m.Key }
func (m *Media) State() *Meta    { return &m.Meta }

// AddReference attaches the media to key.
func (m *Media) AddReference(key Key) {
	m.References = append(m.References, key.String())
}

var MediaSchema = Schema[*Media]{
	Kind: KindMedia,
	New:  func() *Media { return &Media{} },
	Fields: []Field[*Media]{
		Optional("year", func(m *Media) **int { return &m.Year }),
		UnionOf("references", func(m *Media) *[]string { return &m.References }),
		UnionOf("preferred_references", func(m *Media) *[]string { return &m.PreferredReferences }),
		UnionOf("media_tag_enum", func(m *Media) *[]int { return &m.MediaTags }),
		JSONText("details_json", func(m *Media) **string { return &m.DetailsJSON }, nil),
		Optional("private", func(m *Media) **bool { return &m.Private }),
	},
	References: []Attr[*Media]{
		StringsAttr("references", func(m *Media) []string { return m.References }),
		StringsAttr("preferred_references", func(m *Media) []string { return m.PreferredReferences }),
		OptionalIntAttr("year", func(m *Media) *int { return m.Year }),
		IntsAttr("media_tag_enum", func(m *Media) []int { return m.MediaTags }),
	},
	Indexes: []Attr[*Media]{
		StringsAttr("references", func(m *Media) []string { return m.References }),
	},
}
