package lighthouse

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Ticket represents a Lighthouse ticket with its full history.
type Ticket struct {
	Number           int          `json:"number"`
	Title            string       `json:"title"`
	OriginalBody     string       `json:"original_body"`
	URL              string       `json:"url"`
	CreatedAt        string       `json:"created_at"`
	CreatorName      string       `json:"creator_name"`
	AssignedUserName *string      `json:"assigned_user_name,omitempty"`
	MilestoneID      *int         `json:"milestone_id,omitempty"`
	Tag              *string      `json:"tag,omitempty"`
	State            string       `json:"state"`
	Closed           Value        `json:"closed"`
	Versions         []Version    `json:"versions,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

// IsClosed reports whether Lighthouse considers the ticket resolved.
func (t *Ticket) IsClosed() bool {
	return t.Closed.Bool()
}

// Version is one entry of a ticket's change history. The scalar fields hold
// the ticket's values after the change; DiffableAttributes holds the values
// before it.
type Version struct {
	Body               string              `json:"body"`
	UserName           string              `json:"user_name"`
	CreatedAt          string              `json:"created_at"`
	Tag                *string             `json:"tag,omitempty"`
	State              string              `json:"state"`
	Title              string              `json:"title"`
	AssignedUserName   *string             `json:"assigned_user_name,omitempty"`
	MilestoneID        *int                `json:"milestone_id,omitempty"`
	DiffableAttributes *DiffableAttributes `json:"diffable_attributes,omitempty"`
}

// DiffableAttributes lists the fields a version changed, keyed to their
// previous values. A nil field means the attribute did not change.
type DiffableAttributes struct {
	Tag          *Value `json:"tag,omitempty"`
	State        *Value `json:"state,omitempty"`
	AssignedUser *Value `json:"assigned_user,omitempty"`
	Title        *Value `json:"title,omitempty"`
	Milestone    *Value `json:"milestone,omitempty"`
}

// Attachment wraps exactly one of an image or a generic file upload.
type Attachment struct {
	Image *File `json:"image,omitempty"`
	File  *File `json:"attachment,omitempty"`
}

// File describes an uploaded attachment.
type File struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	CreatedAt   string `json:"created_at"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size,omitempty"`
}

// Milestone represents a Lighthouse milestone.
type Milestone struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Goals           string  `json:"goals"`
	DueOn           *string `json:"due_on,omitempty"`
	OpenTicketCount *int    `json:"open_ticket_count,omitempty"`
}

// Value is a loosely typed JSON scalar. Lighthouse serializes the same
// attribute as a string, a number, or a boolean depending on the endpoint.
type Value struct {
	raw string
	set bool
}

// NewValue wraps s as a present Value.
func NewValue(s string) *Value {
	return &Value{raw: s, set: true}
}

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{raw: s, set: true}
		return nil
	}
	*v = Value{raw: string(data), set: true}
	return nil
}

// MarshalJSON writes the value back as a JSON string, or null when unset.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// IsSet reports whether the field was present and non-null.
func (v Value) IsSet() bool {
	return v.set
}

// String returns the textual form of the value.
func (v Value) String() string {
	return v.raw
}

// Int parses the value as an integer.
func (v Value) Int() (int, bool) {
	if !v.set {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool interprets true, 1 and "true" as true.
func (v Value) Bool() bool {
	switch strings.ToLower(strings.TrimSpace(v.raw)) {
	case "true", "1":
		return v.set
	}
	return false
}

type ticketEnvelope struct {
	Ticket *Ticket `json:"ticket"`
}

type ticketPage struct {
	Tickets json.RawMessage `json:"tickets"`
}

type summaryEnvelope struct {
	Ticket *struct {
		Number           *int    `json:"number"`
		AssignedUserName *string `json:"assigned_user_name"`
	} `json:"ticket"`
}

type milestonesResponse struct {
	Milestones []struct {
		Milestone *Milestone `json:"milestone"`
	} `json:"milestones"`
}
