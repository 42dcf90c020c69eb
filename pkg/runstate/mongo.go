package runstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/flowdot/pkg/buildinfo"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// MongoDB defaults.
const (
	DefaultDatabase   = "flowdot"
	DefaultCollection = "task_instances"
)

// MongoConfig configures [NewMongo].
type MongoConfig struct {
	URI        string
	Database   string // Defaults to DefaultDatabase
	Collection string // Defaults to DefaultCollection
}

// TaskInstance is one stored task-instance document: the status of a task in
// one run of a workflow.
type TaskInstance struct {
	WorkflowID string    `bson:"workflow_id"`
	RunID      string    `bson:"run_id"`
	TaskID     string    `bson:"task_id"` // Qualified task ID
	Status     string    `bson:"status"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// Mongo reads run state from a collection of [TaskInstance] documents. The
// latest run is the one holding the most recently updated document.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetAppName(buildinfo.UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Latest returns the task states of the most recent run of workflowID. A
// workflow with no stored documents yields nil states and no error.
func (m *Mongo) Latest(ctx context.Context, workflowID string) (workflow.States, error) {
	var latest TaskInstance
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	err := m.coll.FindOne(ctx, bson.D{{Key: "workflow_id", Value: workflowID}}, opts).Decode(&latest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest run of %s: %w", workflowID, err)
	}
	return m.Run(ctx, workflowID, latest.RunID)
}

// Run returns the task states of one run. ErrNoRun is returned when the run
// has no documents.
func (m *Mongo) Run(ctx context.Context, workflowID, runID string) (workflow.States, error) {
	filter := bson.D{
		{Key: "workflow_id", Value: workflowID},
		{Key: "run_id", Value: runID},
	}
	cur, err := m.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find run %s/%s: %w", workflowID, runID, err)
	}
	var docs []TaskInstance
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode run %s/%s: %w", workflowID, runID, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", workflowID, runID, ErrNoRun)
	}
	return statesFromInstances(docs), nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// statesFromInstances keeps the most recently updated document per task.
func statesFromInstances(docs []TaskInstance) workflow.States {
	states := make(workflow.States, len(docs))
	updated := make(map[string]time.Time, len(docs))
	for _, d := range docs {
		if prev, seen := updated[d.TaskID]; seen && !d.UpdatedAt.After(prev) {
			continue
		}
		st, _ := workflow.ParseRunStatus(d.Status)
		states[d.TaskID] = st
		updated[d.TaskID] = d.UpdatedAt
	}
	return states
}
