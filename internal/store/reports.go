package store

import (
	"context"
	"fmt"
	"time"

	"github.com/HamedShams/pulse-reports/internal/domain"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportsCollection holds both project and epic reports, discriminated by
// reportType.
const ReportsCollection = "reports"

type ReportStore struct {
	col Collection
	log zerolog.Logger
}

func NewReportStore(col Collection, log zerolog.Logger) *ReportStore {
	return &ReportStore{col: col, log: log}
}

// UpsertProjectReport writes report keyed by (projectKey, ownerId,
// atlassianWorkspaceId): at most one document per tuple. $set semantics, so
// fields absent from report are left untouched on an existing document.
func (r *ReportStore) UpsertProjectReport(ctx context.Context, report domain.ProjectReport) error {
	if report.ProjectKey == "" {
		return fmt.Errorf("%w: projectKey is required", ErrValidation)
	}
	if report.OwnerID == "" {
		return fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	filter := bson.M{
		"projectKey":           report.ProjectKey,
		"ownerId":              report.OwnerID,
		"atlassianWorkspaceId": report.AtlassianWorkspaceID,
	}
	if _, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": report}, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert project report %s: %w", report.ProjectKey, err)
	}
	r.log.Info().Str("projectKey", report.ProjectKey).Str("buildId", report.BuildID).Msg("project report stored")
	return nil
}

// UpsertEpicReport mirrors UpsertProjectReport for epic reports. The filter
// includes atlassianWorkspaceId so both report kinds carry the same tenant
// scoping.
func (r *ReportStore) UpsertEpicReport(ctx context.Context, report domain.EpicReport) error {
	if report.Key == "" {
		return fmt.Errorf("%w: epic key is required", ErrValidation)
	}
	if report.OwnerID == "" {
		return fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	filter := bson.M{
		"key":                  report.Key,
		"ownerId":              report.OwnerID,
		"atlassianWorkspaceId": report.AtlassianWorkspaceID,
	}
	if _, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": report}, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert epic report %s: %w", report.Key, err)
	}
	r.log.Info().Str("epicKey", report.Key).Str("buildId", report.BuildID).Msg("epic report stored")
	return nil
}

// FetchAllProjectReports lists every stored project report for the owner,
// all versions included.
func (r *ReportStore) FetchAllProjectReports(ctx context.Context, ownerID string) ([]domain.ProjectReport, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	out := []domain.ProjectReport{}
	filter := bson.M{"ownerId": ownerID, "reportType": domain.ReportTypeProject}
	if err := r.col.Find(ctx, filter, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch project reports: %w", err)
	}
	return out, nil
}

// LatestProjectReports returns, per projectKey, the report with the maximal
// reportGenerationDate. Equal timestamps within a group resolve to whichever
// document the store's sort presents first.
func (r *ReportStore) LatestProjectReports(ctx context.Context, ownerID string) ([]domain.ProjectReport, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	out := []domain.ProjectReport{}
	if err := r.col.Aggregate(ctx, latestProjectsPipeline(ownerID), &out); err != nil {
		return nil, fmt.Errorf("latest project reports: %w", err)
	}
	return out, nil
}

// LatestProjectReportsWithEpics additionally left-joins each selected
// project report with the epic reports of the same build. Projects with no
// matching epics come back with an empty epics slice.
func (r *ReportStore) LatestProjectReportsWithEpics(ctx context.Context, ownerID string) ([]domain.ProjectReport, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", ErrValidation)
	}
	out := []domain.ProjectReport{}
	if err := r.col.Aggregate(ctx, latestProjectsWithEpicsPipeline(ownerID), &out); err != nil {
		return nil, fmt.Errorf("latest project reports with epics: %w", err)
	}
	for i := range out {
		if out[i].Epics == nil {
			out[i].Epics = []domain.EpicReport{}
		}
	}
	return out, nil
}

func latestProjectsPipeline(ownerID string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "ownerId", Value: ownerID},
			{Key: "reportType", Value: domain.ReportTypeProject},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "reportGenerationDate", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$projectKey"},
			{Key: "report", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$report"}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "projectKey", Value: 1}}}},
	}
}

func latestProjectsWithEpicsPipeline(ownerID string) mongo.Pipeline {
	lookup := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: ReportsCollection},
		{Key: "let", Value: bson.D{{Key: "build", Value: "$buildId"}}},
		{Key: "pipeline", Value: mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$buildId", "$$build"}}},
				bson.D{{Key: "$eq", Value: bson.A{"$reportType", domain.ReportTypeEpic}}},
				bson.D{{Key: "$eq", Value: bson.A{"$ownerId", ownerID}}},
			}}}}}}},
		}},
		{Key: "as", Value: "epics"},
	}}}
	return append(latestProjectsPipeline(ownerID), lookup)
}

type staleGroup struct {
	ID struct {
		OwnerID     string `bson:"ownerId"`
		WorkspaceID string `bson:"atlassianWorkspaceId"`
		ReportType  string `bson:"reportType"`
		Key         string `bson:"key"`
	} `bson:"_id"`
	Latest time.Time `bson:"latest"`
	Count  int       `bson:"count"`
}

// PruneSuperseded deletes report versions whose identity group has a
// strictly newer reportGenerationDate. The latest version of every group is
// always kept, so aggregation results are unchanged.
func (r *ReportStore) PruneSuperseded(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "ownerId", Value: "$ownerId"},
				{Key: "atlassianWorkspaceId", Value: "$atlassianWorkspaceId"},
				{Key: "reportType", Value: "$reportType"},
				{Key: "key", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$projectKey", "$key"}}}},
			}},
			{Key: "latest", Value: bson.D{{Key: "$max", Value: "$reportGenerationDate"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	var groups []staleGroup
	if err := r.col.Aggregate(ctx, pipeline, &groups); err != nil {
		return 0, fmt.Errorf("prune superseded: %w", err)
	}
	var removed int64
	for _, g := range groups {
		if g.Count <= 1 {
			continue
		}
		keyField := "key"
		if g.ID.ReportType == domain.ReportTypeProject {
			keyField = "projectKey"
		}
		filter := bson.M{
			"ownerId":              g.ID.OwnerID,
			"atlassianWorkspaceId": g.ID.WorkspaceID,
			"reportType":           g.ID.ReportType,
			keyField:               g.ID.Key,
			"reportGenerationDate": bson.M{"$lt": g.Latest},
		}
		n, err := r.col.DeleteMany(ctx, filter)
		if err != nil {
			return removed, fmt.Errorf("prune superseded %s: %w", g.ID.Key, err)
		}
		removed += n
	}
	return removed, nil
}
