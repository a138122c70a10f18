package servicelog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSConfig holds MongoDB connection settings
type GridFSConfig struct {
	URI            string
	Database       string
	BucketName     string
	ChunkSizeBytes int32
	Pattern        string
}

// GridFSWriter stores each message as a file in a GridFS bucket. The file
// name is expanded from the pattern; the action and a checksum are kept as
// metadata.
type GridFSWriter struct {
	client  *mongo.Client
	bucket  *gridfs.Bucket
	pattern string
	opts    *options
}

// NewGridFSWriter connects to MongoDB and opens the bucket
func NewGridFSWriter(ctx context.Context, cfg *GridFSConfig, opts ...Option) (*GridFSWriter, error) {
	client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	w, err := newGridFSWriter(client, cfg, opts)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return w, nil
}

func newGridFSWriter(client *mongo.Client, cfg *GridFSConfig, opts []Option) (*GridFSWriter, error) {
	database := cfg.Database
	if database == "" {
		database = "emandates"
	}
	bucketName := cfg.BucketName
	if bucketName == "" {
		bucketName = "servicelogs"
	}
	chunkSize := cfg.ChunkSizeBytes
	if chunkSize == 0 {
		chunkSize = 261120 // 255KB
	}
	bucket, err := gridfs.NewBucket(client.Database(database), mongooptions.GridFSBucket().
		SetName(bucketName).
		SetChunkSizeBytes(chunkSize))
	if err != nil {
		return nil, fmt.Errorf("creating GridFS bucket: %w", err)
	}

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}
	return &GridFSWriter{client: client, bucket: bucket, pattern: pattern, opts: newOptions(opts)}, nil
}

// Write uploads data
func (w *GridFSWriter) Write(_ context.Context, data []byte) error {
	now := w.opts.now()
	action := Action(data)
	hash := sha256.Sum256(data)

	uploadOpts := mongooptions.GridFSUpload().SetMetadata(bson.M{
		"action":   action,
		"created":  now,
		"checksum": hex.EncodeToString(hash[:]),
	})
	filename := Expand(w.pattern, now, action)
	id, err := w.bucket.UploadFromStream(filename, bytes.NewReader(data), uploadOpts)
	if err != nil {
		return fmt.Errorf("writing service log: %w", err)
	}
	w.opts.logger.Debug("service log written", "file", filename, "id", id.Hex())
	return nil
}

// Close disconnects from MongoDB
func (w *GridFSWriter) Close(ctx context.Context) error {
	return w.client.Disconnect(ctx)
}
