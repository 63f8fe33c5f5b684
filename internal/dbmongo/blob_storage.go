package dbmongo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobStorage stores decoded image/audio payloads in GridFS. Chat records
// carry only the reference returned by Write; the media server streams the
// bytes back out by that reference.
type BlobStorage struct {
	gridFS *gridfs.Bucket
}

func NewBlobStorage(mongoClient *MongoClient) *BlobStorage {
	return &BlobStorage{
		gridFS: mongoClient.GridFS,
	}
}

type BlobInfo struct {
	ID         string    `json:"id"`       // GridFS ObjectID
	Filename   string    `json:"filename"` // message id + kind extension
	Size       int64     `json:"size"`
	Kind       string    `json:"kind"` // image or audio
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Write uploads one blob named by the owning message. Returns the GridFS
// file id used as the stored reference.
func (bs *BlobStorage) Write(ctx context.Context, filename, kind, senderEmail string, data []byte) (string, error) {
	metadata := bson.M{
		"kind":        kind,
		"uploaded_by": senderEmail,
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := bs.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(stream, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("blob copy failed: %w", err)
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

// Read opens a download stream for a previously stored blob.
func (bs *BlobStorage) Read(ctx context.Context, fileID string) (io.Reader, *BlobInfo, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}

	stream, err := bs.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("blob download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	info := &BlobInfo{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		Kind:       getStringFromMap(metadata, "kind"),
		UploadedBy: getStringFromMap(metadata, "uploaded_by"),
		UploadedAt: fileInfo.UploadDate,
	}

	return stream, info, nil
}

func (bs *BlobStorage) Delete(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	return bs.gridFS.Delete(objectID)
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
