package model

import "time"

const MaxUploadSize = 10 << 20

// AllowedFileExtensions is the upload whitelist, lower case without the dot.
var AllowedFileExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "pdf": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "txt": true,
}

// File is blob metadata attached polymorphically to a task, project or comment.
// The association is resolved through the kind registry, never a gorm relation.
type File struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	FileableType     string    `gorm:"column:fileable_type;type:varchar(255);not null;index:idx_files_fileable" json:"fileable_type"`
	FileableID       uint      `gorm:"column:fileable_id;not null;index:idx_files_fileable" json:"fileable_id"`
	OriginalFilename string    `gorm:"column:original_filename;type:varchar(255);not null" json:"original_filename"`
	StoredFilename   string    `gorm:"column:stored_filename;type:varchar(255);not null;uniqueIndex" json:"stored_filename"`
	Path             string    `gorm:"column:path;type:varchar(512);not null" json:"-"`
	MimeType         string    `gorm:"column:mime_type;type:varchar(255)" json:"mime_type"`
	Size             int64     `gorm:"column:size;not null" json:"size"`
	Disk             string    `gorm:"column:disk;type:varchar(32);not null" json:"disk"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE" json:"-"`
}

func (File) TableName() string {
	return "files"
}
