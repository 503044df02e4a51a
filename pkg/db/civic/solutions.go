package civic

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
)

var indexesForSolutionsCollection = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("createdAt_1"),
	},
	{
		Keys:    bson.D{{Key: "reportId", Value: 1}},
		Options: options.Index().SetName("reportId_1"),
	},
}

func (dbService *CivicDBService) CreateIndexForSolutionsCollection() error {
	return dbService.createMissingIndexes(dbService.collectionSolutions(), indexesForSolutionsCollection)
}

func (dbService *CivicDBService) GetSolutions(ctx context.Context) (solutions []civicTypes.Solution, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(sortByCreatedAt)
	cursor, err := dbService.collectionSolutions().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	solutions = []civicTypes.Solution{}
	err = cursor.All(ctx, &solutions)
	return solutions, err
}

// GetSolutionByID returns mongo.ErrNoDocuments when no solution has this id.
func (dbService *CivicDBService) GetSolutionByID(ctx context.Context, id primitive.ObjectID) (solution civicTypes.Solution, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	err = dbService.collectionSolutions().FindOne(ctx, bson.M{"_id": id}).Decode(&solution)
	return solution, err
}

func (dbService *CivicDBService) AddSolution(ctx context.Context, solution civicTypes.Solution) (primitive.ObjectID, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if solution.ID.IsZero() {
		solution.ID = primitive.NewObjectID()
	}
	res, err := dbService.collectionSolutions().InsertOne(ctx, solution)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return solution.ID, nil
	}
	return id, nil
}

func solutionUpdateDocument(update civicTypes.SolutionUpdate) bson.M {
	set := bson.M{
		"lastUpdatedAt": update.LastUpdatedAt,
	}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	return bson.M{"$set": set}
}

// UpdateSolution applies a partial update. Returns mongo.ErrNoDocuments when nothing matched.
func (dbService *CivicDBService) UpdateSolution(ctx context.Context, id primitive.ObjectID, update civicTypes.SolutionUpdate) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionSolutions().UpdateOne(ctx, bson.M{"_id": id}, solutionUpdateDocument(update))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetSolutionBudget replaces the whole budget, a nil budget clears it.
func (dbService *CivicDBService) SetSolutionBudget(ctx context.Context, id primitive.ObjectID, budget *civicTypes.Budget, updatedAt time.Time) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionSolutions().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"budget":        budget,
			"lastUpdatedAt": updatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (dbService *CivicDBService) DeleteSolution(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	_, err := dbService.collectionSolutions().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (dbService *CivicDBService) DeleteSolutionsForReport(ctx context.Context, reportID primitive.ObjectID) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionSolutions().DeleteMany(ctx, bson.M{"reportId": reportID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
