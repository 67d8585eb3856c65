package repository

import (
	"context"
	"surveyforge/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const responsesCollection = "responses"

// ResponseRepo handles MongoDB operations for submitted responses. Every
// record carries its owning surveyId and all queries are scoped by it.
type ResponseRepo interface {
	Create(ctx context.Context, response *model.Response) (string, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.Response, error)
	ExistsByEmail(ctx context.Context, surveyID, email string) (bool, error)
	ExistsByClient(ctx context.Context, surveyID, clientID string) (bool, error)
	DeleteBySurvey(ctx context.Context, surveyID string) (int64, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection(responsesCollection),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.Response) (string, error) {
	doc := *response
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return "", classify(err)
	}
	response.ID = hexID(result.InsertedID)
	return response.ID, nil
}

func (r *responseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	responses := []*model.Response{}
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) ExistsByEmail(ctx context.Context, surveyID, email string) (bool, error) {
	return r.exists(ctx, bson.M{"surveyId": surveyID, "respondentEmail": email})
}

func (r *responseRepo) ExistsByClient(ctx context.Context, surveyID, clientID string) (bool, error) {
	return r.exists(ctx, bson.M{"surveyId": surveyID, "clientId": clientID})
}

func (r *responseRepo) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

func (r *responseRepo) DeleteBySurvey(ctx context.Context, surveyID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	if err != nil {
		return 0, classify(err)
	}
	return result.DeletedCount, nil
}
