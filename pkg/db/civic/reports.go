package civic

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
)

var indexesForReportsCollection = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("createdAt_1"),
	},
	{
		// used by the orphaned media sweep
		Keys:    bson.D{{Key: "media", Value: 1}},
		Options: options.Index().SetName("media_1"),
	},
}

func (dbService *CivicDBService) CreateIndexForReportsCollection() error {
	return dbService.createMissingIndexes(dbService.collectionReports(), indexesForReportsCollection)
}

// NormalizeReportArrays replaces missing or null media and upvoters fields with empty arrays.
func (dbService *CivicDBService) NormalizeReportArrays(ctx context.Context) (modified int64, err error) {
	for _, field := range []string{"media", "upvoters"} {
		n, err := dbService.setEmptyArray(ctx, field)
		if err != nil {
			return modified, err
		}
		modified += n
	}
	return modified, nil
}

func (dbService *CivicDBService) setEmptyArray(ctx context.Context, field string) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{field: bson.M{"$exists": false}},
			bson.M{field: nil},
		},
	}
	update := bson.M{"$set": bson.M{field: bson.A{}}}

	res, err := dbService.collectionReports().UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (dbService *CivicDBService) GetReports(ctx context.Context) (reports []civicTypes.Report, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(sortByCreatedAt)
	cursor, err := dbService.collectionReports().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports = []civicTypes.Report{}
	err = cursor.All(ctx, &reports)
	return reports, err
}

// GetReportByID returns mongo.ErrNoDocuments when no report has this id.
func (dbService *CivicDBService) GetReportByID(ctx context.Context, id primitive.ObjectID) (report civicTypes.Report, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"_id": id,
	}

	err = dbService.collectionReports().FindOne(ctx, filter).Decode(&report)
	return report, err
}

func (dbService *CivicDBService) ReportExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	count, err := dbService.collectionReports().CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (dbService *CivicDBService) AddReport(ctx context.Context, report civicTypes.Report) (primitive.ObjectID, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	res, err := dbService.collectionReports().InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return report.ID, nil
	}
	return id, nil
}

// reportUpdateDocument builds the $set document for a partial update.
func reportUpdateDocument(update civicTypes.ReportUpdate) bson.M {
	set := bson.M{
		"lastUpdatedAt": update.LastUpdatedAt,
	}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Coordinates != nil {
		set["coordinates"] = update.Coordinates
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	return bson.M{"$set": set}
}

// UpdateReport applies a partial update. Returns mongo.ErrNoDocuments when nothing matched.
func (dbService *CivicDBService) UpdateReport(ctx context.Context, id primitive.ObjectID, update civicTypes.ReportUpdate) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().UpdateOne(ctx, bson.M{"_id": id}, reportUpdateDocument(update))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteReport is idempotent, deleting a missing report is not an error.
func (dbService *CivicDBService) DeleteReport(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (dbService *CivicDBService) PushReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"media": ref}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullReportMedia removes ref from the media list. It only matches reports that currently
// reference ref, so mongo.ErrNoDocuments means "report missing or ref not attached".
func (dbService *CivicDBService) PullReportMedia(ctx context.Context, id primitive.ObjectID, ref string) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().UpdateOne(ctx,
		bson.M{"_id": id, "media": ref},
		bson.M{"$pull": bson.M{"media": ref}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddUpvoter uses $addToSet so concurrent voters never lose each other's votes.
func (dbService *CivicDBService) AddUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"upvoters": voterID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (dbService *CivicDBService) RemoveUpvoter(ctx context.Context, id primitive.ObjectID, voterID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	res, err := dbService.collectionReports().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"upvoters": voterID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (dbService *CivicDBService) IsMediaReferenced(ctx context.Context, ref string) (bool, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	count, err := dbService.collectionReports().CountDocuments(ctx, bson.M{"media": ref}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
