package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps uploads in a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("uploads"))
	if err != nil {
		return nil, fmt.Errorf("media: gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// ConnectMongo dials and pings the server.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func (s *GridFSStore) Save(_ context.Context, name, contentType string, r io.Reader) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return fmt.Errorf("media: gridfs upload %s: %w", name, err)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return fmt.Errorf("media: gridfs write %s: %w", name, err)
	}
	return stream.Close()
}

func (s *GridFSStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	if !ValidName(name) {
		return nil, "", ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("media: gridfs open %s: %w", name, err)
	}

	var ct string
	if meta := stream.GetFile().Metadata; meta != nil {
		if v, err := meta.LookupErr("content_type"); err == nil {
			ct, _ = v.StringValueOK()
		}
	}
	return stream, ct, nil
}
