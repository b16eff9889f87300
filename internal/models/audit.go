package models

import "time"

// Audit actions
const (
	AuditDeleteUser      = "user.delete"
	AuditDeletePost      = "post.delete"
	AuditCleanup         = "admin.cleanup"
	AuditSetVerification = "user.verification"
)

// AuditEntry records one moderation action (PostgreSQL)
type AuditEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    string    `json:"actorId" gorm:"size:24;index"`
	Action     string    `json:"action" gorm:"size:40;index"`
	TargetType string    `json:"targetType" gorm:"size:20"`
	TargetID   string    `json:"targetId" gorm:"size:24"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// Stats is returned by GET /api/user/stats
type Stats struct {
	TotalPosts      int64 `json:"totalPosts"`
	ResolvedPosts   int64 `json:"resolvedPosts"`
	UnresolvedPosts int64 `json:"unresolvedPosts"`
	TotalComments   int64 `json:"totalComments"`
}

// AdminStats is returned by GET /api/admin/stats
type AdminStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalPosts         int64 `json:"totalPosts"`
	ResolvedPosts      int64 `json:"resolvedPosts"`
	UnresolvedPosts    int64 `json:"unresolvedPosts"`
	TotalComments      int64 `json:"totalComments"`
	TotalNotifications int64 `json:"totalNotifications"`
}

// CleanupResult summarizes DELETE /api/admin/cleanup
type CleanupResult struct {
	UsersDeleted         int64 `json:"usersDeleted"`
	PostsDeleted         int64 `json:"postsDeleted"`
	CommentsDeleted      int64 `json:"commentsDeleted"`
	NotificationsDeleted int64 `json:"notificationsDeleted"`
	BlobsReleased        int   `json:"blobsReleased"`
}
