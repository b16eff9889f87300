package firebase

import (
	"context"
	"fmt"
	"os"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its storage bucket
type App struct {
	FirebaseApp   *firebase.App
	StorageClient *storage.Client
	Bucket        *gcs.BucketHandle
	BucketName    string
}

// InitFirebase initializes the Firebase application and the default storage bucket
func InitFirebase(ctx context.Context, credentialsPath, bucketName string, log *zap.Logger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("firebase storage bucket not provided")
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error opening storage bucket %s: %w", bucketName, err)
	}

	log.Info("firebase storage initialized", zap.String("bucket", bucketName))
	return &App{FirebaseApp: firebaseApp, StorageClient: storageClient, Bucket: bucket, BucketName: bucketName}, nil
}
