package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assetsBucket = "assets"

// Asset describes a stored binary file
type Asset struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
}

// AssetStore stores banner images and other uploads
type AssetStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Open returns nil, nil, nil when the asset does not exist
	Open(ctx context.Context, id string) (io.ReadCloser, *Asset, error)
}

type gridFSStore struct {
	db *mongo.Database
}

// NewAssetStore creates a GridFS-backed asset store
func NewAssetStore(db *mongo.Database) AssetStore {
	return &gridFSStore{db: db}
}

// bucket is created per call so deadlines from ctx never leak between requests
func (s *gridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(assetsBucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *gridFSStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	oid, err := b.UploadFromStream(name, r, opts)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, classify(err))
	}
	return oid.Hex(), nil
}

func (s *gridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, *Asset, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil, nil
	}

	b, err := s.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}

	stream, err := b.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, classify(err)
	}

	file := stream.GetFile()
	asset := &Asset{ID: id, Name: file.Name, Size: file.Length}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &meta) == nil {
		asset.ContentType = meta.ContentType
	}
	return stream, asset, nil
}
