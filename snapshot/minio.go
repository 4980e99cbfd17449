package snapshot

import (
	"bytes"
	"context"
	"io"

	"github.com/golang/glog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	e "github.com/microcosm-cc/avatars/errors"
	"github.com/microcosm-cc/avatars/models"
)

// MinioConfig locates the snapshot object in an S3 compatible bucket
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Object          string
	UseSSL          bool
}

// MinioStore keeps the snapshot as a single object in an S3 bucket
type MinioStore struct {
	client *minio.Client
	bucket string
	object string
}

// NewMinioStore connects to the endpoint and creates the bucket if it does
// not exist
func NewMinioStore(c MinioConfig) (*MinioStore, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, e.Wrap("snapshot.NewMinioStore", e.SnapshotFailure, err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, e.Wrap("snapshot.NewMinioStore", e.SnapshotFailure, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, e.Wrap("snapshot.NewMinioStore", e.SnapshotFailure, err)
		}
		if glog.V(2) {
			glog.Infof("Created bucket %s", c.Bucket)
		}
	}

	return &MinioStore{client: client, bucket: c.Bucket, object: c.Object}, nil
}

// Load implements models.SnapshotStore
func (s *MinioStore) Load() (*models.StoreSnapshot, error) {
	obj, err := s.client.GetObject(
		context.Background(),
		s.bucket,
		s.object,
		minio.GetObjectOptions{},
	)
	if err != nil {
		return nil, e.Wrap("snapshot.MinioStore.Load", e.SnapshotFailure, err)
	}
	defer obj.Close()

	// GetObject is lazy, a missing object only shows up on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, e.Wrap("snapshot.MinioStore.Load", e.SnapshotFailure, err)
	}

	snap, err := models.DecodeSnapshot(data)
	if err != nil {
		return nil, e.Wrap("snapshot.MinioStore.Load", e.SnapshotFailure, err)
	}

	return snap, nil
}

// Save implements models.SnapshotStore
func (s *MinioStore) Save(snap *models.StoreSnapshot) error {
	data, err := models.EncodeSnapshot(snap)
	if err != nil {
		return e.Wrap("snapshot.MinioStore.Save", e.SnapshotFailure, err)
	}

	_, err = s.client.PutObject(
		context.Background(),
		s.bucket,
		s.object,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return e.Wrap("snapshot.MinioStore.Save", e.SnapshotFailure, err)
	}

	if glog.V(2) {
		glog.Infof("Saved %d avatars to s3://%s/%s", len(snap.Avatars), s.bucket, s.object)
	}

	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
