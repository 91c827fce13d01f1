package domain

// WeeklyCadence marks the publishing days of each platform, indexed Mon..Sun.
type WeeklyCadence map[Platform][]bool

func DefaultCadence() WeeklyCadence {
	c := make(WeeklyCadence, len(Platforms))
	for _, p := range Platforms {
		c[p] = make([]bool, 7)
	}
	return c
}

// Normalize fills missing platforms and pads or truncates every vector to 7 days.
// Unknown platforms are dropped.
func (c WeeklyCadence) Normalize() WeeklyCadence {
	out := DefaultCadence()
	for p, days := range c {
		if !p.Valid() {
			continue
		}
		copy(out[p], days)
	}
	return out
}

// Active reports whether platform publishes on weekday (0 = Monday).
func (c WeeklyCadence) Active(p Platform, weekday int) bool {
	days := c[p]
	return weekday >= 0 && weekday < len(days) && days[weekday]
}

// UserFormats lists the format labels offered per platform.
type UserFormats map[Platform][]string

func DefaultFormats() UserFormats {
	return UserFormats{
		PlatformLinkedIn:   {"Text post", "Carousel", "Poll"},
		PlatformYouTube:    {"Long-form video", "Short"},
		PlatformNewsletter: {"Weekly digest", "Deep dive"},
		PlatformTwitter:    {"Tweet", "Thread"},
		PlatformInstagram:  {"Single image", "Carousel", "Reel"},
		PlatformTikTok:     {"Talking head", "Tutorial"},
	}
}
