package blog

import (
	"context"
	"strings"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// DefaultTags prefills the tag field of a fresh composer.
const DefaultTags = "React,TypeScript"

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// View names what the composer area should show.
type View string

const (
	ViewHidden  View = "hidden"
	ViewSignIn  View = "sign_in"
	ViewSignOut View = "sign_out"
	ViewPanel   View = "panel"
)

// Writer is the subset of Service the composer dispatches to.
type Writer interface {
	Create(ctx context.Context, identity *models.Identity, payload models.PostPayload, n Notifier) (Listing, error)
	Update(ctx context.Context, identity *models.Identity, id string, payload models.PostPayload, n Notifier) (Listing, error)
}

// Composer is the post form of one visitor. It is not safe for concurrent
// use; callers serialize access.
type Composer struct {
	mode    Mode
	editID  string
	title   string
	tags    string
	content string
	open    bool
	allowed *bool
}

func NewComposer() *Composer {
	return &Composer{mode: ModeCreate, tags: DefaultTags}
}

// Resolve records the outcome of the authorization check.
func (c *Composer) Resolve(allowed bool) {
	c.allowed = &allowed
}

// Unresolve forgets the authorization outcome, e.g. after the identity changed.
func (c *Composer) Unresolve() {
	c.allowed = nil
}

// Toggle shows or hides the panel in create mode.
func (c *Composer) Toggle() {
	c.mode = ModeCreate
	c.editID = ""
	c.open = !c.open
	if c.open {
		c.clearFields()
	}
}

// Edit prefills the form from post and forces the panel open.
func (c *Composer) Edit(post models.Post) {
	c.mode = ModeEdit
	c.editID = post.ID
	c.title = post.Title
	c.tags = strings.Join(post.Tags, ",")
	c.content = post.Content
	c.open = true
}

// SetFields replaces the form contents.
func (c *Composer) SetFields(title, tags, content string) {
	c.title = title
	c.tags = tags
	c.content = content
}

// Payload builds the write payload from the current fields.
func (c *Composer) Payload() models.PostPayload {
	return models.PostPayload{
		Title:   c.title,
		Tags:    models.ParseTags(c.tags),
		Content: c.content,
	}
}

// Submit dispatches to Update in edit mode and Create otherwise. Once the
// call returns the form is cleared and closed, whatever the outcome.
func (c *Composer) Submit(ctx context.Context, w Writer, identity *models.Identity, n Notifier) (Listing, error) {
	var (
		l   Listing
		err error
	)
	if c.mode == ModeEdit && c.editID != "" {
		l, err = w.Update(ctx, identity, c.editID, c.Payload(), n)
	} else {
		l, err = w.Create(ctx, identity, c.Payload(), n)
	}
	c.reset()
	return l, err
}

// Cancel discards the form without writing.
func (c *Composer) Cancel() {
	c.reset()
}

func (c *Composer) reset() {
	c.mode = ModeCreate
	c.editID = ""
	c.open = false
	c.clearFields()
}

func (c *Composer) clearFields() {
	c.title = ""
	c.tags = DefaultTags
	c.content = ""
}

// State is the serializable snapshot of a composer.
type State struct {
	View    View   `json:"view"`
	Mode    Mode   `json:"mode,omitempty"`
	Open    bool   `json:"open"`
	EditID  string `json:"edit_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Tags    string `json:"tags,omitempty"`
	Content string `json:"content,omitempty"`
}

// State reports what should be rendered. Nothing renders until the
// authorization check has resolved; a denied visitor only gets the sign-in
// or sign-out affordance.
func (c *Composer) State(signedIn bool) State {
	switch {
	case c.allowed == nil:
		return State{View: ViewHidden}
	case !*c.allowed && signedIn:
		return State{View: ViewSignOut}
	case !*c.allowed:
		return State{View: ViewSignIn}
	}

	st := State{View: ViewPanel, Mode: c.mode, Open: c.open}
	if c.open {
		st.EditID = c.editID
		st.Title = c.title
		st.Tags = c.tags
		st.Content = c.content
	}
	return st
}
