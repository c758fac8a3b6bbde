package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/HamedShams/pulse-reports/internal/domain"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TemplatesCollection = "templates"

// TemplateStore is plain CRUD over report templates, keyed by
// (atlassianWorkspaceId, templateId).
type TemplateStore struct {
	col Collection
	log zerolog.Logger
}

func NewTemplateStore(col Collection, log zerolog.Logger) *TemplateStore {
	return &TemplateStore{col: col, log: log}
}

func templateFilter(workspaceID, templateID string) bson.M {
	return bson.M{"atlassianWorkspaceId": workspaceID, "templateId": templateID}
}

func (t *TemplateStore) CreateTemplate(ctx context.Context, tpl domain.ReportTemplate) error {
	if tpl.ID == "" || tpl.AtlassianWorkspaceID == "" {
		return fmt.Errorf("%w: template id and workspace are required", ErrValidation)
	}
	if err := t.col.InsertOne(ctx, tpl); err != nil {
		return fmt.Errorf("create template %s: %w", tpl.ID, err)
	}
	return nil
}

// FetchTemplate returns nil without error when no template matches.
func (t *TemplateStore) FetchTemplate(ctx context.Context, workspaceID, templateID string) (*domain.ReportTemplate, error) {
	if templateID == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrValidation)
	}
	var tpl domain.ReportTemplate
	err := t.col.FindOne(ctx, templateFilter(workspaceID, templateID), &tpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch template %s: %w", templateID, err)
	}
	return &tpl, nil
}

func (t *TemplateStore) UpdateTemplate(ctx context.Context, tpl domain.ReportTemplate) error {
	if tpl.ID == "" {
		return fmt.Errorf("%w: template id is required", ErrValidation)
	}
	filter := templateFilter(tpl.AtlassianWorkspaceID, tpl.ID)
	if _, err := t.col.UpdateOne(ctx, filter, bson.M{"$set": tpl}); err != nil {
		return fmt.Errorf("update template %s: %w", tpl.ID, err)
	}
	return nil
}

func (t *TemplateStore) UpsertTemplate(ctx context.Context, tpl domain.ReportTemplate) error {
	if tpl.ID == "" || tpl.AtlassianWorkspaceID == "" {
		return fmt.Errorf("%w: template id and workspace are required", ErrValidation)
	}
	filter := templateFilter(tpl.AtlassianWorkspaceID, tpl.ID)
	if _, err := t.col.UpdateOne(ctx, filter, bson.M{"$set": tpl}, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert template %s: %w", tpl.ID, err)
	}
	t.log.Info().Str("templateId", tpl.ID).Msg("template stored")
	return nil
}

func (t *TemplateStore) DeleteTemplate(ctx context.Context, workspaceID, templateID string) error {
	if templateID == "" {
		return fmt.Errorf("%w: template id is required", ErrValidation)
	}
	n, err := t.col.DeleteOne(ctx, templateFilter(workspaceID, templateID))
	if err != nil {
		return fmt.Errorf("delete template %s: %w", templateID, err)
	}
	if n == 0 {
		t.log.Info().Str("templateId", templateID).Msg("no template to delete")
	}
	return nil
}

// TemplatesByOwner lists only the caller's own templates.
func (t *TemplateStore) TemplatesByOwner(ctx context.Context, workspaceID, owner string) ([]domain.ReportTemplate, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	out := []domain.ReportTemplate{}
	filter := bson.M{"atlassianWorkspaceId": workspaceID, "owner": owner}
	if err := t.col.Find(ctx, filter, nil, &out); err != nil {
		return nil, fmt.Errorf("templates by owner: %w", err)
	}
	return out, nil
}

// VisibleTemplates lists the caller's own templates plus public ones. The
// union is a single $or query so one consistent snapshot is read.
func (t *TemplateStore) VisibleTemplates(ctx context.Context, workspaceID, caller string) ([]domain.ReportTemplate, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: caller is required", ErrValidation)
	}
	out := []domain.ReportTemplate{}
	filter := visibleTemplatesFilter(workspaceID, caller)
	if err := t.col.Find(ctx, filter, nil, &out); err != nil {
		return nil, fmt.Errorf("visible templates: %w", err)
	}
	return out, nil
}

func visibleTemplatesFilter(workspaceID, caller string) bson.M {
	return bson.M{
		"atlassianWorkspaceId": workspaceID,
		"$or": bson.A{
			bson.M{"owner": caller},
			bson.M{"isPublic": true},
		},
	}
}
