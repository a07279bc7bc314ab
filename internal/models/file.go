package models

import "time"

type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// RootParentID marks a record attached directly to the root of the
// owner's tree rather than to a folder record.
const RootParentID = "0"

type File struct {
	ID        string
	UserID    string
	Name      string
	Type      FileType
	IsPublic  bool
	ParentID  string
	LocalPath string
	CreatedAt time.Time
	UpdatedAt time.Time
}
