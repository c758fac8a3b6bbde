package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Report kinds sharing the reports collection, discriminated by reportType.
const (
	ReportTypeProject = "project"
	ReportTypeEpic    = "epic"
)

// Build status values written by the generation side. This layer persists
// them verbatim and never validates transitions.
const (
	BuildPending = "pending"
	BuildSuccess = "success"
	BuildFailure = "failure"
)

type BuildStatus struct {
	Status         string     `bson:"status" json:"status"`
	RemainingItems []string   `bson:"remainingItems" json:"remainingItems"`
	StartedAt      time.Time  `bson:"startedAt" json:"startedAt"`
	CompletedAt    *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type Velocity struct {
	Daily  float64 `bson:"daily" json:"daily"`
	Total  float64 `bson:"total" json:"total"`
	Window int     `bson:"window" json:"window"`
}

type AnalysisState struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Color string `bson:"color" json:"color"`
}

type Analysis struct {
	PredictedEndDate *time.Time     `bson:"predictedEndDate,omitempty" json:"predictedEndDate,omitempty"`
	PredictedOverdue *bool          `bson:"predictedOverdue,omitempty" json:"predictedOverdue,omitempty"`
	State            *AnalysisState `bson:"state,omitempty" json:"state,omitempty"`
	SummaryText      string         `bson:"summaryText,omitempty" json:"summaryText,omitempty"`
}

type SummaryText struct {
	ShortSummary   string `bson:"shortSummary" json:"shortSummary"`
	LongSummary    string `bson:"longSummary" json:"longSummary"`
	PotentialRisks string `bson:"potentialRisks" json:"potentialRisks"`
	ActionNeeded   bool   `bson:"actionNeeded" json:"actionNeeded"`
	Color          string `bson:"color" json:"color"`
}

type IssuePriority struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	IconURL string `bson:"iconUrl" json:"iconUrl"`
}

type Profile struct {
	AccountID   string            `bson:"accountId" json:"accountId"`
	DisplayName string            `bson:"displayName" json:"displayName"`
	AvatarURLs  map[string]string `bson:"avatarUrls,omitempty" json:"avatarUrls,omitempty"`
}

// ReportCommon is the field set shared by both report kinds. Analysis
// content is produced by the build process and is opaque here.
type ReportCommon struct {
	ReportType           string         `bson:"reportType" json:"reportType"`
	BuildID              string         `bson:"buildId" json:"buildId"`
	OwnerID              string         `bson:"ownerId" json:"ownerId"`
	AtlassianWorkspaceID string         `bson:"atlassianWorkspaceId" json:"atlassianWorkspaceId"`
	ReportGenerationDate time.Time      `bson:"reportGenerationDate" json:"reportGenerationDate"`
	BuildStatus          BuildStatus    `bson:"buildStatus" json:"buildStatus"`
	Avatar               string         `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Velocity             Velocity       `bson:"velocity" json:"velocity"`
	Analysis             *Analysis      `bson:"analysis,omitempty" json:"analysis,omitempty"`
	RemainingPoints      float64        `bson:"remainingPoints" json:"remainingPoints"`
	InProgressPoints     float64        `bson:"inProgressPoints" json:"inProgressPoints"`
	CompletedPoints      float64        `bson:"completedPoints" json:"completedPoints"`
	TotalPoints          float64        `bson:"totalPoints" json:"totalPoints"`
	StatusName           string         `bson:"statusName,omitempty" json:"statusName,omitempty"`
	Priority             *IssuePriority `bson:"priority,omitempty" json:"priority,omitempty"`
	Title                string         `bson:"title,omitempty" json:"title,omitempty"`
	Summary              *SummaryText   `bson:"summary,omitempty" json:"summary,omitempty"`
	LongRunningDays      int            `bson:"longRunningDays,omitempty" json:"longRunningDays,omitempty"`
	WindowStartDate      time.Time      `bson:"windowStartDate,omitempty" json:"windowStartDate,omitempty"`
	WindowEndDate        time.Time      `bson:"windowEndDate,omitempty" json:"windowEndDate,omitempty"`
}

type ProjectReport struct {
	ReportCommon `bson:",inline"`

	ProjectKey string       `bson:"projectKey" json:"projectKey"`
	Name       string       `bson:"name,omitempty" json:"name,omitempty"`
	Lead       *Profile     `bson:"lead,omitempty" json:"lead,omitempty"`
	Epics      []EpicReport `bson:"epics,omitempty" json:"epics,omitempty"`
}

type EpicReport struct {
	ReportCommon `bson:",inline"`

	Key               string             `bson:"key" json:"key"`
	Assignee          *Profile           `bson:"assignee,omitempty" json:"assignee,omitempty"`
	DueDate           *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	ChangelogTimeline *ChangelogTimeline `bson:"changelogTimeline,omitempty" json:"changelogTimeline,omitempty"`
	LongRunningIssues []LongRunningIssue `bson:"longRunningIssues,omitempty" json:"longRunningIssues,omitempty"`
	ChildIssues       []ChildIssue       `bson:"childIssues,omitempty" json:"childIssues,omitempty"`
	ScopeDeltas       []ScopeDelta       `bson:"scopeDeltas,omitempty" json:"scopeDeltas,omitempty"`
}

// ChangelogTimeline keeps the envelope typed; the changelog values come
// straight from the issue tracker and are stored verbatim as raw bson.
type ChangelogTimeline struct {
	IssueKey   string     `bson:"issueKey" json:"issueKey"`
	PivotDate  time.Time  `bson:"pivotDate" json:"pivotDate"`
	BeforeDate []bson.Raw `bson:"beforeDate,omitempty" json:"beforeDate,omitempty"`
	AfterDate  []bson.Raw `bson:"afterDate,omitempty" json:"afterDate,omitempty"`
	All        []bson.Raw `bson:"all,omitempty" json:"all,omitempty"`
}

type LongRunningIssue struct {
	ID           string `bson:"id" json:"id"`
	Key          string `bson:"key" json:"key"`
	TimeInStatus int64  `bson:"timeInStatus" json:"timeInStatus"`
}

type ChildIssue struct {
	ID     string   `bson:"id" json:"id"`
	Key    string   `bson:"key" json:"key"`
	Fields bson.Raw `bson:"fields,omitempty" json:"fields,omitempty"`
}

type ScopeDelta struct {
	IssueKey     string   `bson:"issueKey" json:"issueKey"`
	StoryPoints  float64  `bson:"storyPoints" json:"storyPoints"`
	ChangingUser *Profile `bson:"changingUser,omitempty" json:"changingUser,omitempty"`
}

// TextReport is a narrative document, one per (owner, basedOnBuildId).
// TemplateID is a weak reference: deleting a template never cascades here.
type TextReport struct {
	ID             string    `bson:"id" json:"id"`
	BasedOnBuildID string    `bson:"basedOnBuildId" json:"basedOnBuildId"`
	Owner          string    `bson:"owner" json:"owner"`
	Text           string    `bson:"text" json:"text"`
	GeneratedDate  time.Time `bson:"generatedDate" json:"generatedDate"`
	TemplateID     string    `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Name           string    `bson:"name,omitempty" json:"name,omitempty"`
	ProjectName    string    `bson:"projectName,omitempty" json:"projectName,omitempty"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
}

type ReportTemplate struct {
	ID                   string `bson:"templateId" json:"id"`
	AtlassianWorkspaceID string `bson:"atlassianWorkspaceId" json:"atlassianWorkspaceId"`
	Name                 string `bson:"name,omitempty" json:"name,omitempty"`
	Description          string `bson:"description,omitempty" json:"description,omitempty"`
	Audience             string `bson:"audience,omitempty" json:"audience,omitempty"`
	Text                 string `bson:"text" json:"text"`
	Owner                string `bson:"owner,omitempty" json:"owner,omitempty"`
	IsPublic             bool   `bson:"isPublic" json:"isPublic"`
}
