package domain

// MediaRef is the room's agreed media source: an embedded payload or an
// external locator. At most one of the fields is set.
type MediaRef struct {
	Data string `json:"mediaData,omitempty"`
	URL  string `json:"mediaUrl,omitempty"`
}

// NewMediaRef normalizes client input. A locator wins over an embedded
// payload when a client sends both.
func NewMediaRef(data, url string) MediaRef {
	if url != "" {
		return MediaRef{URL: url}
	}
	return MediaRef{Data: data}
}

func (m MediaRef) IsZero() bool { return m.Data == "" && m.URL == "" }
