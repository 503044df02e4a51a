package civic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civic-lens/civic-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_REPORTS   = "reports"
	COLLECTION_NAME_SOLUTIONS = "solutions"
)

type CivicDBService struct {
	DBClient *mongo.Client
	timeout  int
	DBName   string
}

func NewCivicDBService(configs db.DBConfig) (*CivicDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	civicDBSc := &CivicDBService{
		DBClient: dbClient,
		timeout:  configs.Timeout,
		DBName:   configs.DBName,
	}

	if configs.RunIndexCreation {
		if err := civicDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for civic DB", slog.String("error", err.Error()))
		}
	}

	return civicDBSc, nil
}

func (dbService *CivicDBService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
	defer cancel()
	return dbService.DBClient.Disconnect(ctx)
}

func (dbService *CivicDBService) collectionReports() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBName).Collection(COLLECTION_NAME_REPORTS)
}

func (dbService *CivicDBService) collectionSolutions() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBName).Collection(COLLECTION_NAME_SOLUTIONS)
}

// getContext bounds a single DB call. Deriving from parent keeps an active session attached.
func (dbService *CivicDBService) getContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

// WithTransaction runs fn inside a multi-document transaction. Every DB call made with the
// context passed to fn joins the transaction. The transaction is aborted when fn fails and
// commit errors are wrapped with db.ErrCommitFailed.
func (dbService *CivicDBService) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	session, err := dbService.DBClient.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}

		if err := fn(sc); err != nil {
			if abortErr := sc.AbortTransaction(context.WithoutCancel(sc)); abortErr != nil {
				slog.Error("failed to abort transaction", slog.String("error", abortErr.Error()))
			}
			return err
		}

		if err := sc.CommitTransaction(sc); err != nil {
			return fmt.Errorf("%w: %v", db.ErrCommitFailed, err)
		}
		return nil
	})
}

func (dbService *CivicDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for civic DB")

	if err := dbService.CreateIndexForReportsCollection(); err != nil {
		slog.Error("Error creating index for reports", slog.String("error", err.Error()))
		return err
	}

	if err := dbService.CreateIndexForSolutionsCollection(); err != nil {
		slog.Error("Error creating index for solutions", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// CreateDefaultIndexes creates the indexes of every collection, skipping the ones that already exist.
func (dbService *CivicDBService) CreateDefaultIndexes() error {
	return dbService.ensureIndexes()
}

// DropIndexes drops the default indexes, or every index except _id when dropAll is set.
// Failures are logged per index and the remaining ones are still attempted.
func (dbService *CivicDBService) DropIndexes(dropAll bool) {
	dbService.dropIndexesForCollection(dbService.collectionReports(), indexesForReportsCollection, dropAll)
	dbService.dropIndexesForCollection(dbService.collectionSolutions(), indexesForSolutionsCollection, dropAll)
}

func (dbService *CivicDBService) dropIndexesForCollection(collection *mongo.Collection, indexes []mongo.IndexModel, dropAll bool) {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	if dropAll {
		if _, err := collection.Indexes().DropAll(ctx); err != nil {
			slog.Error("Error dropping all indexes", slog.String("collection", collection.Name()), slog.String("error", err.Error()))
		}
		return
	}

	for _, index := range indexes {
		if index.Options == nil || index.Options.Name == nil {
			slog.Error("Index name is nil", slog.String("collection", collection.Name()), slog.String("index", fmt.Sprintf("%+v", index.Keys)))
			continue
		}
		indexName := *index.Options.Name
		if _, err := collection.Indexes().DropOne(ctx, indexName); err != nil {
			slog.Error("Error dropping index", slog.String("collection", collection.Name()), slog.String("indexName", indexName), slog.String("error", err.Error()))
		}
	}
}

// ListIndexes returns the index specifications of both collections keyed by collection name.
func (dbService *CivicDBService) ListIndexes() (map[string][]bson.M, error) {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	result := map[string][]bson.M{}
	for _, collection := range []*mongo.Collection{dbService.collectionReports(), dbService.collectionSolutions()} {
		indexes, err := db.ListCollectionIndexes(ctx, collection)
		if err != nil {
			return nil, err
		}
		result[collection.Name()] = indexes
	}
	return result, nil
}

// createMissingIndexes only creates the indexes whose name is not present yet.
func (dbService *CivicDBService) createMissingIndexes(collection *mongo.Collection, indexes []mongo.IndexModel) error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	existing, err := db.ListCollectionIndexes(ctx, collection)
	if err != nil {
		return err
	}
	names := map[string]bool{}
	for _, idx := range existing {
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}

	missing := []mongo.IndexModel{}
	for _, idx := range indexes {
		if idx.Options != nil && idx.Options.Name != nil && names[*idx.Options.Name] {
			continue
		}
		missing = append(missing, idx)
	}
	if len(missing) == 0 {
		return nil
	}

	_, err = collection.Indexes().CreateMany(ctx, missing)
	return err
}

var sortByCreatedAt = bson.D{
	{Key: "createdAt", Value: 1},
	{Key: "_id", Value: 1},
}
