package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/HamedShams/pulse-reports/internal/domain"
)

func TestVisibleTemplatesFilter_IsSingleOrQuery(t *testing.T) {
	want := bson.M{
		"atlassianWorkspaceId": "ws1",
		"$or": bson.A{
			bson.M{"owner": "u2"},
			bson.M{"isPublic": true},
		},
	}
	if diff := cmp.Diff(want, visibleTemplatesFilter("ws1", "u2")); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatesByOwner_StrictFilter(t *testing.T) {
	f := &fakeCollection{findDocs: []domain.ReportTemplate{
		{ID: "tpl-1", AtlassianWorkspaceID: "ws1", Owner: "u1", Text: "hello"},
	}}
	ts := NewTemplateStore(f, zerolog.Nop())

	got, err := ts.TemplatesByOwner(context.Background(), "ws1", "u1")
	if err != nil {
		t.Fatalf("templates by owner: %v", err)
	}
	if len(got) != 1 || got[0].ID != "tpl-1" {
		t.Fatalf("unexpected result %#v", got)
	}
	want := bson.M{"atlassianWorkspaceId": "ws1", "owner": "u1"}
	if diff := cmp.Diff(want, f.calls[0].filter); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleTemplates_PassesUnionFilter(t *testing.T) {
	f := &fakeCollection{}
	ts := NewTemplateStore(f, zerolog.Nop())

	got, err := ts.VisibleTemplates(context.Background(), "ws1", "u2")
	if err != nil {
		t.Fatalf("visible templates: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if diff := cmp.Diff(visibleTemplatesFilter("ws1", "u2"), f.calls[0].filter); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTemplate_AbsentIsNil(t *testing.T) {
	f := &fakeCollection{}
	ts := NewTemplateStore(f, zerolog.Nop())

	tpl, err := ts.FetchTemplate(context.Background(), "ws1", "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl != nil {
		t.Fatalf("expected nil template, got %#v", tpl)
	}
}

func TestFetchTemplate_Found(t *testing.T) {
	f := &fakeCollection{findOneDoc: domain.ReportTemplate{ID: "tpl-1", AtlassianWorkspaceID: "ws1", IsPublic: true}}
	ts := NewTemplateStore(f, zerolog.Nop())

	tpl, err := ts.FetchTemplate(context.Background(), "ws1", "tpl-1")
	if err != nil {
		t.Fatalf("fetch template: %v", err)
	}
	if tpl == nil || tpl.ID != "tpl-1" || !tpl.IsPublic {
		t.Fatalf("unexpected template %#v", tpl)
	}
}

func TestUpsertTemplate_KeyedByWorkspaceAndID(t *testing.T) {
	f := &fakeCollection{}
	ts := NewTemplateStore(f, zerolog.Nop())
	tpl := domain.ReportTemplate{ID: "tpl-1", AtlassianWorkspaceID: "ws1", Text: "body"}

	if err := ts.UpsertTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("upsert template: %v", err)
	}
	want := bson.M{"atlassianWorkspaceId": "ws1", "templateId": "tpl-1"}
	if diff := cmp.Diff(want, f.calls[0].filter); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	if !f.calls[0].upsert {
		t.Fatalf("expected upsert option set")
	}
}

func TestCreateTemplate_MissingID(t *testing.T) {
	f := &fakeCollection{}
	ts := NewTemplateStore(f, zerolog.Nop())

	err := ts.CreateTemplate(context.Background(), domain.ReportTemplate{AtlassianWorkspaceID: "ws1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("no write expected, got %#v", f.calls)
	}
}

func TestDeleteTemplate_AbsentIsQuiet(t *testing.T) {
	f := &fakeCollection{deleted: 0}
	ts := NewTemplateStore(f, zerolog.Nop())

	if err := ts.DeleteTemplate(context.Background(), "ws1", "tpl-1"); err != nil {
		t.Fatalf("delete template: %v", err)
	}
}
