// Package services holds the business rules of the lost & found board:
// counter maintenance, cascade deletion and access checks around the
// repositories and the blob store.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/auth"
	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Dependencies are the stores the services work on
type Dependencies struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Notifications repositories.NotificationRepository
	Audit         repositories.AuditRepository
	Blobs         storage.BlobStore
	Locker        locks.Locker
	Tx            repositories.TxRunner
	Logger        *zap.Logger
}

// Options tune authentication
type Options struct {
	JWTSecret   []byte
	TokenTTL    time.Duration
	AdminEmails []string
}

// Services groups the per-resource services
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Posts         *PostService
	Comments      *CommentService
	Notifications *NotificationService
	Admin         *AdminService
	Uploads       *UploadService
}

// New wires the services over deps
func New(deps Dependencies, opts Options) *Services {
	if deps.Tx == nil {
		deps.Tx = repositories.NoTx{}
	}
	if deps.Audit == nil {
		deps.Audit = repositories.NoopAuditRepository{}
	}
	if deps.Locker == nil {
		deps.Locker = locks.NewMemoryLocker()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = auth.DefaultTokenTTL
	}
	admins := make(map[string]bool, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			admins[email] = true
		}
	}

	b := &base{Dependencies: deps, log: deps.Logger.Named("services")}
	return &Services{
		Auth:          &AuthService{base: b, secret: opts.JWTSecret, ttl: opts.TokenTTL, adminEmails: admins},
		Users:         &UserService{base: b},
		Posts:         &PostService{base: b},
		Comments:      &CommentService{base: b},
		Notifications: &NotificationService{base: b},
		Admin:         &AdminService{base: b},
		Uploads:       &UploadService{base: b},
	}
}

type base struct {
	Dependencies
	log *zap.Logger
}

// actor loads the acting user so that admin rights come from the database
func (b *base) actor(ctx context.Context, id primitive.ObjectID) (access.Actor, *models.User, error) {
	user, err := b.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return access.Actor{}, nil, unauthorized("User no longer exists")
		}
		return access.Actor{}, nil, err
	}
	return access.ActorFromUser(user), user, nil
}

func (b *base) lock(ctx context.Context, key string) (func(), error) {
	return b.Locker.Lock(ctx, key)
}

// releaseBlobs deletes blobs that were uploaded for a write that failed
func (b *base) releaseBlobs(ctx context.Context, images []models.Image) {
	for _, img := range images {
		if err := b.Blobs.Delete(ctx, img.PublicID); err != nil {
			b.log.Warn("failed to release blob", zap.String("publicId", img.PublicID), zap.Error(err))
		}
	}
}

func (b *base) uploadAll(ctx context.Context, folder string, files []storage.File) ([]models.Image, error) {
	images := make([]models.Image, 0, len(files))
	for _, f := range files {
		img, err := b.Blobs.Upload(ctx, folder, f)
		if err != nil {
			b.releaseBlobs(ctx, images)
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (b *base) audit(ctx context.Context, actor access.Actor, action, targetType string, targetID primitive.ObjectID, detail string) {
	entry := &models.AuditEntry{
		ActorID:    actor.ID.Hex(),
		Action:     action,
		TargetType: targetType,
		Detail:     detail,
	}
	if !targetID.IsZero() {
		entry.TargetID = targetID.Hex()
	}
	if err := b.Audit.Record(ctx, entry); err != nil {
		b.log.Error("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
