package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/HamedShams/pulse-reports/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TextReportsCollection = "text_reports"

// Namespace for deriving text report ids. Fixed forever: changing it would
// orphan every stored report.
var textReportNamespace = uuid.MustParse("7a9f8e2c-4d1b-4f6a-9c3e-2b8d5e0a1f64")

// TextReportID derives the stable identifier for (owner, basedOnBuildId).
// The same pair always maps to the same id, which is what keeps one text
// report per build.
func TextReportID(owner, basedOnBuildID string) string {
	return uuid.NewSHA1(textReportNamespace, []byte(owner+"/"+basedOnBuildID)).String()
}

type TextReportStore struct {
	col Collection
	log zerolog.Logger
}

func NewTextReportStore(col Collection, log zerolog.Logger) *TextReportStore {
	return &TextReportStore{col: col, log: log}
}

// StoreTextReport upserts the report under its derived id and returns that
// id. A later store for the same (owner, basedOnBuildId) replaces the
// earlier one.
func (t *TextReportStore) StoreTextReport(ctx context.Context, report domain.TextReport) (string, error) {
	if report.Owner == "" || report.BasedOnBuildID == "" {
		return "", fmt.Errorf("%w: owner and basedOnBuildId are required", ErrValidation)
	}
	report.ID = TextReportID(report.Owner, report.BasedOnBuildID)
	if _, err := t.col.UpdateOne(ctx, bson.M{"id": report.ID}, bson.M{"$set": report}, options.Update().SetUpsert(true)); err != nil {
		return "", fmt.Errorf("store text report %s: %w", report.ID, err)
	}
	t.log.Info().Str("id", report.ID).Str("buildId", report.BasedOnBuildID).Msg("text report stored")
	return report.ID, nil
}

// FetchTextReportByID returns nil without error when no report matches.
func (t *TextReportStore) FetchTextReportByID(ctx context.Context, id string) (*domain.TextReport, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	var report domain.TextReport
	err := t.col.FindOne(ctx, bson.M{"id": id}, &report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch text report %s: %w", id, err)
	}
	return &report, nil
}

// UpdateTextReport replaces the editable fields of the report, creating the
// document if it is absent.
func (t *TextReportStore) UpdateTextReport(ctx context.Context, id, text, name, description string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	update := bson.M{"$set": bson.M{
		"text":        text,
		"name":        name,
		"description": description,
	}}
	if _, err := t.col.UpdateOne(ctx, bson.M{"id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("update text report %s: %w", id, err)
	}
	return nil
}

// FetchTextReportsByOwner lists the owner's reports, newest first.
func (t *TextReportStore) FetchTextReportsByOwner(ctx context.Context, owner string) ([]domain.TextReport, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	out := []domain.TextReport{}
	opts := options.Find().SetSort(bson.D{{Key: "generatedDate", Value: -1}})
	if err := t.col.Find(ctx, bson.M{"owner": owner}, opts, &out); err != nil {
		return nil, fmt.Errorf("text reports by owner: %w", err)
	}
	return out, nil
}

func (t *TextReportStore) DeleteTextReportByID(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	n, err := t.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete text report %s: %w", id, err)
	}
	if n == 0 {
		t.log.Info().Str("id", id).Msg("no text report to delete")
	}
	return nil
}
