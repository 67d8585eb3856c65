package repository

import (
	"context"
	"surveyforge/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const themesCollection = "themes"

// ThemeRepo handles MongoDB operations for saved themes
type ThemeRepo interface {
	Create(ctx context.Context, theme *model.SavedTheme) (string, error)
	List(ctx context.Context) ([]*model.SavedTheme, error)
	Delete(ctx context.Context, id string) error
}

type themeRepo struct {
	collection *mongo.Collection
}

// NewThemeRepo creates a new theme repository
func NewThemeRepo(db *mongo.Database) ThemeRepo {
	return &themeRepo{
		collection: db.Collection(themesCollection),
	}
}

func (r *themeRepo) Create(ctx context.Context, theme *model.SavedTheme) (string, error) {
	theme.CreatedAt = time.Now()

	doc := *theme
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return "", classify(err)
	}
	theme.ID = hexID(result.InsertedID)
	return theme.ID, nil
}

func (r *themeRepo) List(ctx context.Context) ([]*model.SavedTheme, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	themes := []*model.SavedTheme{}
	if err := cursor.All(ctx, &themes); err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *themeRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return classify(err)
}
