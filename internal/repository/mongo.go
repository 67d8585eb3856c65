package repository

import (
	"context"
	"errors"
	"fmt"
	"surveyforge/internal/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Server error codes that mean the database user lacks a privilege
const (
	codeUnauthorized    = 13
	codeAtlasNotAllowed = 8000
)

// EnsureIndexes creates the indexes every repository relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := createIndex(ctx, db.Collection(surveysCollection), bson.D{{Key: "createdAt", Value: -1}}); err != nil {
		return err
	}
	if err := createIndex(ctx, db.Collection(responsesCollection), bson.D{
		{Key: "surveyId", Value: 1},
		{Key: "submittedAt", Value: -1},
	}); err != nil {
		return err
	}
	if err := createIndex(ctx, db.Collection(responsesCollection), bson.D{
		{Key: "surveyId", Value: 1},
		{Key: "respondentEmail", Value: 1},
	}); err != nil {
		return err
	}
	if err := createIndex(ctx, db.Collection(responsesCollection), bson.D{
		{Key: "surveyId", Value: 1},
		{Key: "clientId", Value: 1},
	}); err != nil {
		return err
	}
	return createIndex(ctx, db.Collection(themesCollection), bson.D{{Key: "createdAt", Value: -1}})
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: options.Index()})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", coll.Name(), classify(err))
	}
	return nil
}

// classify turns authorization rejections into ErrPermissionDenied so callers
// can tell them apart from generic storage failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isPermissionError(err) {
		return apperror.Wrap(apperror.ErrPermissionDenied, err)
	}
	return err
}

func isPermissionError(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range []int{codeUnauthorized, codeAtlasNotAllowed} {
			if se.HasErrorCode(code) {
				return true
			}
		}
	}
	return false
}

// objectID parses a hex id; malformed ids resolve to "not found" for callers.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func hexID(v interface{}) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
