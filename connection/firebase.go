package connection

import (
	"context"
	"fmt"
	"io"
	"log"

	"projectdesk/config"
	"projectdesk/services"
	"projectdesk/storage"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FBConnection initializes the Firebase app from the service account file,
// or from application default credentials when none is configured.
func FBConnection(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Storage.Bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}
	return app, nil
}

// Pushers builds the notification fan-out enabled in cfg. The returned
// closers must be closed on shutdown.
func Pushers(ctx context.Context, app *firebase.App, cfg *config.Config) ([]services.Pusher, []io.Closer, error) {
	var pushers []services.Pusher
	var closers []io.Closer
	if cfg.Firebase.FCMEnabled {
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error getting Messaging client: %v", err)
		}
		pushers = append(pushers, services.NewFCMPusher(client))
	}
	if cfg.Firebase.FirestoreMirror {
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error getting Firestore client: %v", err)
		}
		pushers = append(pushers, services.NewFirestoreMirror(client))
		closers = append(closers, client)
	}
	return pushers, closers, nil
}

// Disks builds the storage manager. The local disk is always mounted so files
// written before a switch to gcs stay readable.
func Disks(ctx context.Context, app *firebase.App, cfg *config.Config) (*storage.Manager, *storage.LocalDisk, error) {
	local, err := storage.NewLocalDisk(cfg.Storage.Root, cfg.App.URL+"/storage")
	if err != nil {
		return nil, nil, fmt.Errorf("local disk: %w", err)
	}
	if cfg.Storage.Disk != storage.GCSDiskName {
		return storage.NewManager(local), local, nil
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting Storage client: %v", err)
	}
	bucket, err := client.Bucket(cfg.Storage.Bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("open bucket %s: %v", cfg.Storage.Bucket, err)
	}
	log.Printf("Storing uploads in gs://%s", cfg.Storage.Bucket)
	return storage.NewManager(storage.NewGCSDisk(bucket, cfg.Storage.Bucket), local), local, nil
}
