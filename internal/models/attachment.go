package models

import (
	"time"
)

// Attachment is the database record for one uploaded file. The row owns the
// file on disk: FilePath stores the public reference (either the configured
// public-prefix form written today or the legacy bare "/uploads/..." form),
// never a raw disk path. TaskID stays null until the upload is linked to a
// task.
type Attachment struct {
	ID         uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Filename   string `json:"filename" gorm:"not null"`
	FilePath   string `json:"file_path" gorm:"not null"`
	FileType   string `json:"file_type"`
	UploaderID uint   `json:"uploader_id" gorm:"not null;index"`
	TaskID     *uint  `json:"task_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`

	Task *Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}
