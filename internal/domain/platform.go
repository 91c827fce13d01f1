package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformLinkedIn   Platform = "linkedin"
	PlatformYouTube    Platform = "youtube"
	PlatformNewsletter Platform = "newsletter"
	PlatformTwitter    Platform = "twitter"
	PlatformInstagram  Platform = "instagram"
	PlatformTikTok     Platform = "tiktok"

	// NoPlatform marks a generic doc. It is stored as JSON null.
	NoPlatform Platform = ""
)

// Platforms lists every platform in display order.
var Platforms = []Platform{
	PlatformLinkedIn,
	PlatformYouTube,
	PlatformNewsletter,
	PlatformTwitter,
	PlatformInstagram,
	PlatformTikTok,
}

var platformLabels = map[Platform]string{
	PlatformLinkedIn:   "LinkedIn",
	PlatformYouTube:    "YouTube",
	PlatformNewsletter: "Newsletter",
	PlatformTwitter:    "Twitter",
	PlatformInstagram:  "Instagram",
	PlatformTikTok:     "TikTok",
}

// Valid reports whether p is a known platform. NoPlatform is not one.
func (p Platform) Valid() bool {
	_, ok := platformLabels[p]
	return ok
}

func (p Platform) IsDoc() bool {
	return p == NoPlatform
}

// Label returns the display name, "Doc" for NoPlatform.
func (p Platform) Label() string {
	if l, ok := platformLabels[p]; ok {
		return l
	}
	if p == NoPlatform {
		return "Doc"
	}
	return string(p)
}

// ParsePlatform accepts a platform name, or "", "doc" and "null" for NoPlatform.
func ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "doc", "null":
		return NoPlatform, nil
	}
	p := Platform(s)
	if !p.Valid() {
		return NoPlatform, fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

func (p Platform) MarshalJSON() ([]byte, error) {
	if p == NoPlatform {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

func (p *Platform) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = NoPlatform
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Platform(s)
	return nil
}

// CharLimits holds the soft character limits shown next to editor fields.
type CharLimits struct {
	Body        int `json:"body,omitempty"`
	Title       int `json:"title,omitempty"`
	Description int `json:"description,omitempty"`
}

var PlatformCharLimits = map[Platform]CharLimits{
	PlatformTwitter:   {Body: 280},
	PlatformLinkedIn:  {Body: 3000},
	PlatformInstagram: {Body: 2200},
	PlatformTikTok:    {Body: 2200},
	PlatformYouTube:   {Title: 100, Description: 5000},
}
