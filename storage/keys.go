package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// GenerateKey builds the object-store key for an uploaded file:
// {folder/}{unixMillis}-{randomID}-{sanitizedName}.
// Keys are generated once per upload attempt and never reused, even for a
// retry of the same filename. Uniqueness is probabilistic (timestamp plus a
// random id) and is not checked against the bucket.
func GenerateKey(originalName, folder string) string {
	name := unsafeKeyChars.ReplaceAllString(originalName, "_")
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	key := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), id, name)

	if folder = sanitizeFolder(folder); folder != "" {
		key = folder + "/" + key
	}
	return key
}

// sanitizeFolder cleans each path segment with the same character whitelist
// as file names, dropping empty segments so ".." and "//" cannot survive.
func sanitizeFolder(folder string) string {
	var segments []string
	for _, seg := range strings.Split(folder, "/") {
		seg = unsafeKeyChars.ReplaceAllString(seg, "_")
		seg = strings.Trim(seg, ".")
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, "/")
}
