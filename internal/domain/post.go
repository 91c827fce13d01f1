package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const PostType = "post"

type Status string

const (
	StatusIdea      Status = "idea"
	StatusDraft     Status = "draft"
	StatusReady     Status = "ready"
	StatusPublished Status = "published"
)

var Statuses = []Status{StatusIdea, StatusDraft, StatusReady, StatusPublished}

func (s Status) Valid() bool {
	switch s {
	case StatusIdea, StatusDraft, StatusReady, StatusPublished:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// MaxPinned is the number of style examples allowed per platform.
const MaxPinned = 5

type Timestamp struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

// Post is a single piece of content. Times are epoch milliseconds.
type Post struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Body      string   `json:"body"`
	Status    Status   `json:"status"`
	Platform  Platform `json:"platform"`

	Format       string `json:"format,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	ScheduledFor *int64 `json:"scheduledFor,omitempty"`
	Pinned       bool   `json:"pinned,omitempty"`
	SourceID     string `json:"sourceId,omitempty"`

	Hook           string      `json:"hook,omitempty"`
	SubjectLine    string      `json:"subjectLine,omitempty"`
	Preheader      string      `json:"preheader,omitempty"`
	Hashtags       []string    `json:"hashtags,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	Timestamps     []Timestamp `json:"timestamps,omitempty"`
	ThreadSegments []string    `json:"threadSegments,omitempty"`
}

func (p Post) IsScheduled() bool {
	return p.ScheduledFor != nil
}

// ScheduledTime returns the schedule in loc, or the zero time when unscheduled.
func (p Post) ScheduledTime(loc *time.Location) time.Time {
	if p.ScheduledFor == nil {
		return time.Time{}
	}
	return time.UnixMilli(*p.ScheduledFor).In(loc)
}

func (p Post) Created(loc *time.Location) time.Time {
	return time.UnixMilli(p.CreatedAt).In(loc)
}

type Feed struct {
	Items []Post `json:"items"`
}

// NewPost carries the caller-controlled fields of a post being created.
type NewPost struct {
	Body        string   `json:"body"`
	Platform    Platform `json:"platform"`
	Status      Status   `json:"status"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
	SourceID    string   `json:"sourceId,omitempty"`

	ScheduledFor *int64 `json:"scheduledFor,omitempty"`

	// CreatedAt overrides the creation time, used when importing.
	CreatedAt int64 `json:"-"`
}

// PostPatch is a partial update. Nil fields are left alone.
// A JSON null for platform turns the post into a doc, one for scheduledFor
// unschedules it and one for sourceId detaches it from its source.
type PostPatch struct {
	Body        *string   `json:"body,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Format      *string   `json:"format,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Platform    *Platform `json:"platform,omitempty"`
	Pinned      *bool     `json:"pinned,omitempty"`
	SourceID    *string   `json:"sourceId,omitempty"`

	ScheduledFor  *int64 `json:"scheduledFor,omitempty"`
	ClearSchedule bool   `json:"-"`

	Hook           *string      `json:"hook,omitempty"`
	SubjectLine    *string      `json:"subjectLine,omitempty"`
	Preheader      *string      `json:"preheader,omitempty"`
	Hashtags       *[]string    `json:"hashtags,omitempty"`
	Tags           *[]string    `json:"tags,omitempty"`
	Timestamps     *[]Timestamp `json:"timestamps,omitempty"`
	ThreadSegments *[]string    `json:"threadSegments,omitempty"`
}

func (p *PostPatch) UnmarshalJSON(data []byte) error {
	type plain PostPatch
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if msg, ok := raw["platform"]; ok && string(msg) == "null" {
		doc := NoPlatform
		v.Platform = &doc
	}
	if msg, ok := raw["scheduledFor"]; ok && string(msg) == "null" {
		v.ScheduledFor = nil
		v.ClearSchedule = true
	}
	if msg, ok := raw["sourceId"]; ok && string(msg) == "null" {
		detached := ""
		v.SourceID = &detached
	}

	*p = PostPatch(v)
	return nil
}

// Apply merges the patch into post. It does not touch UpdatedAt.
func (p PostPatch) Apply(post *Post) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&post.Body, p.Body)
	setString(&post.Title, p.Title)
	setString(&post.Description, p.Description)
	setString(&post.Format, p.Format)
	setString(&post.SourceID, p.SourceID)
	setString(&post.Hook, p.Hook)
	setString(&post.SubjectLine, p.SubjectLine)
	setString(&post.Preheader, p.Preheader)

	if p.Status != nil {
		post.Status = *p.Status
	}
	if p.Platform != nil {
		post.Platform = *p.Platform
	}
	if p.Pinned != nil {
		post.Pinned = *p.Pinned
	}
	if p.ClearSchedule {
		post.ScheduledFor = nil
	} else if p.ScheduledFor != nil {
		at := *p.ScheduledFor
		post.ScheduledFor = &at
	}
	if p.Hashtags != nil {
		post.Hashtags = *p.Hashtags
	}
	if p.Tags != nil {
		post.Tags = *p.Tags
	}
	if p.Timestamps != nil {
		post.Timestamps = *p.Timestamps
	}
	if p.ThreadSegments != nil {
		post.ThreadSegments = *p.ThreadSegments
	}
}
