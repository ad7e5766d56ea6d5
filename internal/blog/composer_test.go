package blog

import (
	"context"
	"errors"
	"testing"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// fakeWriter records which operation the composer dispatched to.
type fakeWriter struct {
	creates []models.PostPayload
	updates map[string]models.PostPayload
	err     error
}

func (w *fakeWriter) Create(_ context.Context, _ *models.Identity, p models.PostPayload, _ Notifier) (Listing, error) {
	w.creates = append(w.creates, p)
	if w.err != nil {
		return Listing{}, w.err
	}
	return Listing{Posts: []models.Post{{ID: "created", Title: p.Title}}, Source: SourceRemote}, nil
}

func (w *fakeWriter) Update(_ context.Context, _ *models.Identity, id string, p models.PostPayload, _ Notifier) (Listing, error) {
	if w.updates == nil {
		w.updates = map[string]models.PostPayload{}
	}
	w.updates[id] = p
	return Listing{}, w.err
}

func TestComposer_Visibility(t *testing.T) {
	c := NewComposer()
	if v := c.State(true).View; v != ViewHidden {
		t.Errorf("Expected hidden before resolution, got %s", v)
	}

	c.Resolve(false)
	if v := c.State(false).View; v != ViewSignIn {
		t.Errorf("Expected sign in affordance, got %s", v)
	}
	if st := c.State(true); st.View != ViewSignOut || st.Title != "" || st.Open {
		t.Errorf("Expected bare sign out affordance, got %+v", st)
	}

	c.Resolve(true)
	if st := c.State(true); st.View != ViewPanel || st.Open {
		t.Errorf("Expected closed panel, got %+v", st)
	}

	c.Unresolve()
	if v := c.State(true).View; v != ViewHidden {
		t.Errorf("Expected hidden after unresolve, got %s", v)
	}
}

func TestComposer_CreateFlow(t *testing.T) {
	c := NewComposer()
	c.Resolve(true)
	c.Toggle()

	st := c.State(true)
	if !st.Open || st.Mode != ModeCreate || st.Tags != DefaultTags {
		t.Fatalf("Expected open create form with default tags, got %+v", st)
	}

	c.SetFields("Hello", " Go, Chi ,", "body")
	w := &fakeWriter{}
	l, err := c.Submit(context.Background(), w, admin, &recordingNotifier{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(l.Posts) != 1 || l.Posts[0].Title != "Hello" {
		t.Errorf("Expected the writer's list to be passed back, got %+v", l.Posts)
	}
	if len(w.creates) != 1 || len(w.updates) != 0 {
		t.Fatalf("Expected one create, got %d creates / %d updates", len(w.creates), len(w.updates))
	}
	got := w.creates[0]
	if got.Title != "Hello" || len(got.Tags) != 2 || got.Tags[1] != "Chi" || got.Content != "body" {
		t.Errorf("Unexpected payload %+v", got)
	}

	st = c.State(true)
	if st.Open || st.Mode != ModeCreate {
		t.Errorf("Expected closed form after submit, got %+v", st)
	}
}

func TestComposer_EditFlow(t *testing.T) {
	c := NewComposer()
	c.Resolve(true)
	c.Edit(models.Post{ID: "p1", Title: "Old", Tags: []string{"A", "B"}, Content: "old body"})

	st := c.State(true)
	if !st.Open || st.Mode != ModeEdit || st.EditID != "p1" || st.Tags != "A,B" || st.Content != "old body" {
		t.Fatalf("Expected prefilled edit form, got %+v", st)
	}

	c.SetFields("New", "A", "new body")
	w := &fakeWriter{err: errBoom}
	_, err := c.Submit(context.Background(), w, admin, &recordingNotifier{})
	if !errors.Is(err, errBoom) {
		t.Errorf("Expected writer error to be returned, got %v", err)
	}
	if p, ok := w.updates["p1"]; !ok || p.Title != "New" {
		t.Errorf("Expected update of p1, got %+v", w.updates)
	}
	if len(w.creates) != 0 {
		t.Errorf("Expected no create in edit mode")
	}

	st = c.State(true)
	if st.Open || st.Mode != ModeCreate {
		t.Errorf("Expected form reset even after failure, got %+v", st)
	}
}

func TestComposer_Cancel(t *testing.T) {
	c := NewComposer()
	c.Resolve(true)
	c.Edit(models.Post{ID: "p1", Title: "Old"})
	c.Cancel()

	st := c.State(true)
	if st.Open || st.Mode != ModeCreate || st.EditID != "" {
		t.Errorf("Expected cleared form, got %+v", st)
	}

	c.Toggle()
	if st := c.State(true); st.Title != "" || st.Tags != DefaultTags {
		t.Errorf("Expected fresh fields after cancel, got %+v", st)
	}
}

func TestComposer_ToggleLeavesEditMode(t *testing.T) {
	c := NewComposer()
	c.Resolve(true)
	c.Edit(models.Post{ID: "p1", Title: "Old"})
	c.Toggle()

	if st := c.State(true); st.Open || st.Mode != ModeCreate {
		t.Errorf("Expected toggle to close and leave edit mode, got %+v", st)
	}
}
