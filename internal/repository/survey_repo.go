package repository

import (
	"context"
	"surveyforge/internal/apperror"
	"surveyforge/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const surveysCollection = "surveys"

// SurveyRepo handles MongoDB operations for survey definitions
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) (string, error)
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	// Upsert merges the survey's fields into the stored document, creating it when absent
	Upsert(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id string) error
	// List returns every survey, newest first
	List(ctx context.Context) ([]*model.Survey, error)
}

type surveyRepo struct {
	collection *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection(surveysCollection),
	}
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	now := time.Now()
	survey.CreatedAt = now
	survey.UpdatedAt = now

	doc := *survey
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return "", classify(err)
	}

	survey.ID = hexID(result.InsertedID)
	return survey.ID, nil
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	survey.ID = id
	return &survey, nil
}

func (r *surveyRepo) Upsert(ctx context.Context, survey *model.Survey) error {
	oid, ok := objectID(survey.ID)
	if !ok {
		return apperror.ErrNotFound
	}

	survey.UpdatedAt = time.Now()
	update := bson.M{
		"$set":         toSetDocument(survey),
		"$setOnInsert": bson.M{"createdAt": survey.UpdatedAt},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update, options.Update().SetUpsert(true))
	return classify(err)
}

func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return classify(err)
}

func (r *surveyRepo) List(ctx context.Context) ([]*model.Survey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	surveys := []*model.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

// toSetDocument lists every editable field explicitly so cleared values
// (an emptied allow-list, a removed theme) overwrite what is stored.
func toSetDocument(survey *model.Survey) bson.M {
	allowed := survey.AllowedEmails
	if allowed == nil {
		allowed = []string{}
	}
	questions := survey.Questions
	if questions == nil {
		questions = []model.Question{}
	}
	return bson.M{
		"title":            survey.Title,
		"description":      survey.Description,
		"questions":        questions,
		"theme":            survey.Theme,
		"privacy":          survey.Privacy,
		"allowedEmails":    allowed,
		"limitOneResponse": survey.LimitOneResponse,
		"thankYouMessage":  survey.ThankYouMessage,
		"footerMessage":    survey.FooterMessage,
		"updatedAt":        survey.UpdatedAt,
	}
}
