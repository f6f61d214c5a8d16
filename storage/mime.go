package storage

import "strings"

// Fixed extension table. Resolution is purely name-based; file contents are
// never inspected, so a mislabeled extension wins.
var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"zip":  "application/zip",
}

// ResolveContentType maps a filename extension to a MIME type, falling back
// to fallbackMime for unknown or missing extensions.
func ResolveContentType(filename, fallbackMime string) string {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 || dot == len(filename)-1 {
		return fallbackMime
	}
	if ct, ok := contentTypes[strings.ToLower(filename[dot+1:])]; ok {
		return ct
	}
	return fallbackMime
}
